package user

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	// password policy
	pwdMinLen      = 8
	pwdMaxAttrSim  = .7
	errPwdTooShort = core.NewValidationError(nil, core.FieldError{
		Field: "password", Error: fmt.Sprintf("password must contain at least %d characters", pwdMinLen)})
	errPwdAllNum = core.NewValidationError(nil, core.FieldError{
		Field: "password", Error: "password cannot be entirely numeric"})
	errPwdTooSim = core.NewValidationError(nil, core.FieldError{
		Field: "password", Error: "password cannot be similar to user attributes"})
)

func init() {
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, allRolesTag, allRolesText)
}

// allRolesValidation checks that provided user roles are all in AllRoles.
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	sort.Strings(AllRoles)
	for _, role := range roles {
		idx := sort.SearchStrings(AllRoles, role)
		if idx >= len(AllRoles) || AllRoles[idx] != role {
			return false
		}
	}
	return true
}

// validatePassword applies the password policy: minimum length, not
// entirely numeric and not too similar to the user's own attributes.
func validatePassword(pwd string, attrs ...string) error {
	if len(pwd) < pwdMinLen {
		return errPwdTooShort
	}
	if _, err := strconv.Atoi(pwd); err == nil {
		return errPwdAllNum
	}

	lowPwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		matcher := difflib.NewMatcher(strings.Split(lowPwd, ""), strings.Split(attr, ""))
		if matcher.QuickRatio() >= pwdMaxAttrSim {
			return errPwdTooSim
		}
	}
	return nil
}
