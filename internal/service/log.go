package service

import (
	"github.com/keketsolithane/keketso/internal/form"
	"github.com/keketsolithane/keketso/internal/store"
	"github.com/sirupsen/logrus"
)

func logOutcome(log logrus.FieldLogger, outcome form.Outcome, err error) {
	log = log.WithField("outcome", outcome.String())
	switch outcome {
	case form.OutcomeSuccess:
		log.Info("submission stored")
	case form.OutcomeFailure:
		if store.IsRejection(err) {
			log.WithError(err).Warn("submission rejected by store")
		} else {
			log.WithError(err).Error("submission failed")
		}
	default:
		log.WithError(err).Debug("submission not sent")
	}
}
