package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/icba/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestPasswordPolicy(t *testing.T) {
	validate := newValidator()
	SetCommonPasswords([]string{"Password123", "letmein!!"})
	defer SetCommonPasswords(nil)

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "aB3$", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "correct horse", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "0123456789", wantTag: pwdNotAllNumTag},
		{name: "similar to email domain", pwd: "icba.test!", wantTag: pwdAttrSimTag},
		{name: "similar to email", pwd: "jdoe@icba.t", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "PASSWORD123", wantTag: pwdNoCommonTag},
		{name: "empty", pwd: "", wantTag: "required"},
		{name: "valid", pwd: "Tr0ub4dor&3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := PasswordChange{
				Password:  tt.pwd,
				Username:  "jdoe",
				Email:     "jdoe@icba.test",
				FirstName: "John",
				LastName:  "Doe",
			}
			err := validate.Struct(pc)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, core.HasFailedTag(err, tt.wantTag), "got %v", err)
		})
	}
}

func TestNewUserValidation(t *testing.T) {
	validate := newValidator()

	nu := NewUser{
		Username:  "jdoe",
		Password:  "Tr0ub4dor&3",
		Email:     "not-an-email",
		FirstName: "John",
		LastName:  "Doe",
	}
	err := validate.Struct(nu)
	assert.True(t, core.HasFailedTag(err, "email"))
	assert.False(t, core.HasFailedTag(err, PasswordPolicyTags...))

	nu.Email = "jdoe@icba.test"
	assert.NoError(t, validate.Struct(nu))

	nu.Password = "jdoe@icba"
	assert.True(t, core.HasFailedTag(validate.Struct(nu), pwdAttrSimTag))
}
