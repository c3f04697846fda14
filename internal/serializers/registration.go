package serializers

import (
	"strings"

	"github.com/diewo77/go-employes/validation"
)

// RegistrationInput is an employee payload plus the credentials of the
// account to create for it.
type RegistrationInput struct {
	Email    string       `json:"email" validate:"required,email,max=255"`
	Password string       `json:"password" validate:"required,min=8,max=72"`
	Employe  EmployeInput `json:"-" validate:"-"`
}

// DecodeRegistration decodes an account registration. Violations on the
// credentials and on the employee fields are reported together.
func DecodeRegistration(data []byte) (RegistrationInput, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return RegistrationInput{}, err
	}
	employe, v := employeFields(fields)

	credentials := validation.Violations{}
	in := RegistrationInput{
		Email:    strings.ToLower(charField(fields, "email", credentials)),
		Password: textField(fields, "password", false, credentials),
		Employe:  employe,
	}
	if err := validation.Struct(in, credentials); err != nil {
		credentials.Add("non_field_errors", "invalid")
	}
	v.Merge(credentials)
	return in, v.Err()
}
