package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/hrapi"
)

// ProfileForm is the employee's own details form. The id, role and links
// always come from the session, never from the browser.
type ProfileForm struct {
	ID            int64  `json:"id"`
	FullName      string `json:"fullName" validate:"required"`
	EmailAddress  string `json:"emailAddress" validate:"email"`
	UserName      string `json:"userName" validate:"required"`
	NewPassword   string `json:"newPassword,omitempty" validate:"omitempty,min=6"`
	ContactNumber string `json:"contactNumber" validate:"len=10,number"`
	UserRole      string `json:"userRole"`
	HRID          int64  `json:"hrId"`
	ManagerID     int64  `json:"managerId"`
}

var profileFormMessages = map[string]string{
	"fullName":      "Full Name is required",
	"emailAddress":  "Invalid email address",
	"userName":      "Username is required",
	"newPassword":   "Password must be at least 6 characters long",
	"contactNumber": "Phone number must be 10 digits long",
}

type ProfileResult string

const (
	ResultNone      ProfileResult = ""
	ResultSubmitted ProfileResult = "submitted"
	ResultFailed    ProfileResult = "failed"
)

type ProfileView struct {
	Form    ProfileForm      `json:"form"`
	Errors  ValidationErrors `json:"errors,omitempty"`
	Result  ProfileResult    `json:"result,omitempty"`
	Message string           `json:"message,omitempty"`
}

// EditPersonalDetails lets an employee resubmit their own details.
type EditPersonalDetails struct {
	api     PeopleAPI
	opts    Options
	profile auth.Profile

	mu     sync.Mutex
	form   ProfileForm
	errs   ValidationErrors
	result ProfileResult
}

func NewEditPersonalDetails(api PeopleAPI, profile auth.Profile, opts Options) *EditPersonalDetails {
	return &EditPersonalDetails{
		api:     api,
		opts:    opts.withDefaults(),
		profile: profile,
		form: ProfileForm{
			ID:            profile.ID,
			FullName:      profile.Name,
			EmailAddress:  profile.Email,
			UserName:      profile.Username,
			ContactNumber: profile.Phone,
			UserRole:      string(profile.Role),
			HRID:          profile.HRID,
			ManagerID:     profile.ManagerID,
		},
	}
}

func (e *EditPersonalDetails) View() ProfileView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *EditPersonalDetails) viewLocked() ProfileView {
	form := e.form
	form.NewPassword = ""
	v := ProfileView{Form: form, Errors: e.errs, Result: e.result}
	switch e.result {
	case ResultSubmitted:
		v.Message = "Profile settings updated successfully!"
	case ResultFailed:
		v.Message = "There was an error updating the profile settings."
	}
	return v
}

// Submit validates the form and posts it to /userDetails/add. Validation
// failures leave the previous result untouched.
func (e *EditPersonalDetails) Submit(ctx context.Context, form ProfileForm) (ProfileView, error) {
	form.FullName = strings.TrimSpace(form.FullName)
	form.EmailAddress = strings.TrimSpace(form.EmailAddress)
	form.UserName = strings.TrimSpace(form.UserName)
	form.ContactNumber = strings.TrimSpace(form.ContactNumber)
	form.ID = e.profile.ID
	form.UserRole = string(e.profile.Role)
	form.HRID = e.profile.HRID
	form.ManagerID = e.profile.ManagerID

	errs := checkStruct(form, profileFormMessages)

	e.mu.Lock()
	e.form = form
	if len(errs) > 0 {
		defer e.mu.Unlock()
		e.errs = errs
		return e.viewLocked(), errs
	}
	e.errs = nil
	e.mu.Unlock()

	err := e.api.AddUserDetails(ctx, hrapi.UserDetails{
		Name:     form.FullName,
		Email:    form.EmailAddress,
		Phone:    form.ContactNumber,
		Username: form.UserName,
		Password: form.NewPassword,
		Role:     form.UserRole,
		HR:       hrapi.Ref{ID: form.HRID},
		Manager:  hrapi.Ref{ID: form.ManagerID},
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.opts.Logger.WithError(err).WithFields(logrus.Fields{"user_id": form.ID}).Warn("submit personal details failed")
		e.result = ResultFailed
		return e.viewLocked(), nil
	}
	e.result = ResultSubmitted
	return e.viewLocked(), nil
}

// Dismiss closes the result dialog.
func (e *EditPersonalDetails) Dismiss() ProfileView {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = ResultNone
	return e.viewLocked()
}
