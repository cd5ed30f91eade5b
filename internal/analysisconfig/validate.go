package analysisconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 YAML 키 이름 사용
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// scheduleParser matches the scheduler's cron.WithSeconds() parser
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks struct tags first, then the rules tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{Field: yamlPath(fe.Namespace()), Message: message(fe)}
		}
		return err
	}

	for year, path := range cfg.Datasets.Paths {
		if strings.TrimSpace(path) == "" {
			return ValidationError{fmt.Sprintf("datasets.paths.%d", year), "must not be empty"}
		}
	}

	if _, err := scheduleParser.Parse(cfg.Schedule); err != nil {
		return ValidationError{"schedule", err.Error()}
	}

	if !cfg.Render.Scatter && !cfg.Render.Heatmap && !cfg.Export.Parquet {
		return ValidationError{"render", "nothing to produce: enable scatter, heatmap or export.parquet"}
	}

	return nil
}

// yamlPath turns "Config.binning.bins_x" into "binning.bins_x"
func yamlPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gtefield":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	default:
		return fmt.Sprintf("must satisfy %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value())
	}
}
