package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// RunRequest is the submission body: one document reference and the
// questions to answer against it, in order.
type RunRequest struct {
	Documents string   `json:"documents" validate:"required"`
	Questions []string `json:"questions" validate:"required,min=1,dive,required"`
}

// RunResponse carries one answer per question, positionally aligned.
type RunResponse struct {
	Answers []string `json:"answers"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *RunRequest) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
