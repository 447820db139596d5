package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"pgpartition/internal/partition"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "connection.dsn",
// "plan[1].suffix"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate performs static validation of a Config. Struct-level rules come
// from the validate tags; each plan step is additionally converted into its
// partition command so that missing per-op fields are reported before any
// SQL is compiled.
//
// The DSN is only a warning: commands that print SQL run without a database.
func Validate(cfg Config) []Issue {
	var issues []Issue

	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fieldPath(fe.Namespace()),
					Message:  tagMessage(fe),
				})
			}
		} else {
			issues = append(issues, Issue{Severity: SeverityError, Path: "", Message: err.Error()})
		}
	}

	if strings.TrimSpace(cfg.Connection.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "connection.dsn",
			Message:  "no dsn configured; only commands that print SQL will work",
		})
	}
	if cfg.Metrics.Backend == "pushgateway" && cfg.Metrics.PushgatewayURL == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.pushgateway_url",
			Message:  "pushgateway backend without url; metrics will be disabled",
		})
	}

	if cfg.Metrics.Backend == "datadog" && cfg.Metrics.DatadogAddr == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.datadog_addr",
			Message:  "datadog backend without address; metrics will be disabled",
		})
	}

	issues = append(issues, validatePlan(cfg.Plan)...)
	return issues
}

func validatePlan(steps []Step) []Issue {
	var issues []Issue
	if len(steps) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "plan",
			Message:  "plan is empty",
		})
		return issues
	}
	for i, s := range steps {
		cmd, err := s.Command()
		if err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("plan[%d].op", i),
				Message:  err.Error(),
			})
			continue
		}
		if err := cmd.Validate(); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("plan[%d]", i),
				Message:  err.Error(),
			})
		}
		if _, isParent := cmd.(partition.CreatePartitioned); isParent && len(s.Columns) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("plan[%d].columns", i),
				Message:  "partitioned table has no columns",
			})
		}
	}
	return issues
}

// fieldPath turns "Config.plan[0].table" into "plan[0].table".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be host:port"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
