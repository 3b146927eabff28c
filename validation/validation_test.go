package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/taskbridge/errors"
)

type workerSection struct {
	AppPath string `mapstructure:"app_path" validate:"required,apppath"`
	Mode    string `mapstructure:"mode" validate:"oneof=worker client"`
}

type sampleConfig struct {
	Name   string        `mapstructure:"name" validate:"required"`
	Worker workerSection `mapstructure:"worker"`
}

func TestValidateValid(t *testing.T) {
	cfg := sampleConfig{
		Name:   "billing",
		Worker: workerSection{AppPath: "example.com/billing/web.App", Mode: "worker"},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateReportsConfigPaths(t *testing.T) {
	cfg := sampleConfig{Worker: workerSection{AppPath: "not a path", Mode: "server"}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	for _, want := range []string{
		"name: is required",
		"worker.app_path: must look like import/path.Symbol",
		"worker.mode: must be one of: worker client",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
}

func TestIsAppPath(t *testing.T) {
	cases := map[string]bool{
		"example.com/billing/web.App":    true,
		"web.NewApp":                     true,
		"github.com/a/b-c/internal.App2": true,
		"":                               false,
		"App":                            false,
		"web.":                           false,
		"web.1App":                       false,
		"web app.App":                    false,
	}
	for in, want := range cases {
		if got := IsAppPath(in); got != want {
			t.Errorf("IsAppPath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("AppPath"); got != "app_path" {
		t.Errorf("expected app_path, got %q", got)
	}
}
