package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/go-playground/validator/v10"
)

// GameInput is the full set of writable game fields. Any host sent by the
// client is ignored; the caller always becomes the host.
type GameInput struct {
	Sport               models.Sport      `json:"sport" validate:"required,oneof=football basketball cricket futsal"`
	Title               string            `json:"title" validate:"required,max=200"`
	Location            string            `json:"location" validate:"required,max=255"`
	DateTime            *time.Time        `json:"date_time" validate:"required"`
	CurrentPlayersCount *int              `json:"current_players_count" validate:"omitempty,min=0"`
	NeededPlayersCount  *int              `json:"needed_players_count" validate:"required,min=0"`
	SkillLevel          models.SkillLevel `json:"skill_level" validate:"required,oneof=beginner intermediate advanced"`
	Visibility          models.Visibility `json:"visibility" validate:"required,oneof=public private"`
	Description         *string           `json:"description"`
}

// GamePatch carries the fields of a partial update; nil means unchanged.
type GamePatch struct {
	Sport               *models.Sport      `json:"sport" validate:"omitempty,oneof=football basketball cricket futsal"`
	Title               *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Location            *string            `json:"location" validate:"omitempty,min=1,max=255"`
	DateTime            *time.Time         `json:"date_time"`
	CurrentPlayersCount *int               `json:"current_players_count" validate:"omitempty,min=0"`
	NeededPlayersCount  *int               `json:"needed_players_count" validate:"omitempty,min=0"`
	SkillLevel          *models.SkillLevel `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Visibility          *models.Visibility `json:"visibility" validate:"omitempty,oneof=public private"`
	Description         *string            `json:"description"`
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs the struct tags of in and turns failures into an
// Invalid error keyed by json field name.
func validateInput(detail string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	e := invalid(detail)
	e.Fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		e.Fields[fe.Field()] = fieldMessage(fe)
	}
	return e
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	}
	return "Invalid value."
}
