package models

// Option is one entry of a select list: the stored token and its label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Services is the fixed list a quote request picks from.
var Services = []string{
	"Web Development",
	"Mobile App Development",
	"Cloud Solutions",
	"Digital Marketing",
	"UI/UX Design",
	"Cybersecurity",
}

// BudgetOptions lists the budget tokens. Labels are in Maloti.
var BudgetOptions = []Option{
	{Value: "5000-10000", Label: "M2,500 - M5,000"},
	{Value: "10000-25000", Label: "M5,000 - M10,000"},
	{Value: "25000-50000", Label: "M10,000 - M15,000"},
	{Value: "50000+", Label: "M15,000+"},
}

// TimelineOptions lists the timeline tokens.
var TimelineOptions = []Option{
	{Value: "1-3months", Label: "1-3 months"},
	{Value: "3-6months", Label: "3-6 months"},
	{Value: "6-12months", Label: "6-12 months"},
	{Value: "12months+", Label: "1 year +"},
}

func IsService(s string) bool {
	for _, v := range Services {
		if v == s {
			return true
		}
	}
	return false
}

func IsBudget(s string) bool { return hasOption(BudgetOptions, s) }

func IsTimeline(s string) bool { return hasOption(TimelineOptions, s) }

func hasOption(opts []Option, s string) bool {
	for _, o := range opts {
		if o.Value == s {
			return true
		}
	}
	return false
}
