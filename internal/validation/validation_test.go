package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
)

func TestStruct_ValidCredential(t *testing.T) {
	v := New()
	err := v.Struct(domainauth.Credential{
		Identifier: "admin@school.edu",
		Secret:     "password123",
		Role:       domainauth.RoleAdmin,
	})
	assert.NoError(t, err)
}

func TestStruct_Failures(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		cred  domainauth.Credential
		field string
		msg   string
	}{
		{
			name:  "missing identifier",
			cred:  domainauth.Credential{Secret: "x", Role: domainauth.RoleAdmin},
			field: "email",
			msg:   "email is a required field",
		},
		{
			name:  "blank identifier",
			cred:  domainauth.Credential{Identifier: "   ", Secret: "x", Role: domainauth.RoleAdmin},
			field: "email",
			msg:   "email cannot be blank",
		},
		{
			name:  "missing secret",
			cred:  domainauth.Credential{Identifier: "a@b.c", Role: domainauth.RoleTeacher},
			field: "password",
			msg:   "password is a required field",
		},
		{
			name:  "unknown role",
			cred:  domainauth.Credential{Identifier: "a@b.c", Secret: "x", Role: "janitor"},
			field: "role",
			msg:   "role must be one of admin, teacher, parent, student",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.cred)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}
