package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keketsolithane/keketso/internal/config"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("store.driver", config.DriverSQLite)
	v.Set("sqlite.path", filepath.Join(t.TempDir(), "site.db"))
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func TestOpenStore_SQLiteEndToEnd(t *testing.T) {
	cfg := sqliteConfig(t)
	log, _ := test.NewNullLogger()

	st, err := openStore(context.Background(), cfg, log)
	require.NoError(t, err)
	defer st.Close()

	srv := httptest.NewServer(newRouter(cfg, st, log))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/messages", "application/json", strings.NewReader(
		`{"first_name":"A","last_name":"B","email":"a@b.com","subject":"Hi","message":"Test"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "✅ Message sent successfully!", body["status"])

	var out bytes.Buffer
	require.NoError(t, reportStore(context.Background(), &out, cfg.Store.Driver, st))
	assert.Equal(t, "store sqlite: ok\n  messages: 1\n  quotes: 0\n", out.String())

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestOpenStore_SupabaseNeedsURLAndKey(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverSupabase}}

	_, err := openStore(context.Background(), cfg, log)
	assert.ErrorIs(t, err, store.ErrMissingURL)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := openStore(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mongo"}}, log)

	var cerr *config.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "store.driver", cerr.Key)
}

func TestReportStore_WithoutCounter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, reportStore(context.Background(), &out, "fake", pingOnly{}))
	assert.Equal(t, "store fake: ok\n", out.String())
}

func TestReportStore_Unreachable(t *testing.T) {
	err := reportStore(context.Background(), io.Discard, "fake", pingOnly{err: errors.New("refused")})
	assert.EqualError(t, err, "store fake unreachable: refused")
}

type pingOnly struct{ err error }

func (p pingOnly) Insert(context.Context, string, store.Row) error { return nil }
func (p pingOnly) Ping(context.Context) error { return p.err }
func (p pingOnly) Close() error { return nil }

func TestSiteView(t *testing.T) {
	cfg := sqliteConfig(t)
	site := siteView(cfg.Site)
	assert.Equal(t, "SparkleSmart Technologies", site.Name)
	assert.Equal(t, "Hatsolo (By-Pass)", site.Address)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionFormat = "json"
	defer func() { versionFormat = "text" }()

	require.NoError(t, versionCmd.RunE(versionCmd, nil))

	var info versionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
