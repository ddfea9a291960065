package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

type CreateUserForm struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password,omitempty" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=Manager Employee"`
	HRID      int64  `json:"hr_id,omitempty"`
	ManagerID int64  `json:"manager_id,omitempty"`
}

var createUserMessages = map[string]string{
	"name":       "Name is required",
	"email":      "Email is required",
	"phone":      "Phone is required",
	"username":   "Username is required",
	"password":   "Password is required",
	"role":       "Role is required",
	"role.oneof": "Role must be Manager or Employee",
	"hr_id":      "HR ID is required",
	"manager_id": "Manager ID is required",
}

func (f CreateUserForm) validate() ValidationErrors {
	errs := checkStruct(f, createUserMessages)
	switch f.Role {
	case "Manager":
		if f.HRID <= 0 {
			errs["hr_id"] = createUserMessages["hr_id"]
		}
	case "Employee":
		if f.HRID <= 0 {
			errs["hr_id"] = createUserMessages["hr_id"]
		}
		if f.ManagerID <= 0 {
			errs["manager_id"] = createUserMessages["manager_id"]
		}
	}
	return errs
}

type CreateUserView struct {
	Form   CreateUserForm   `json:"form"`
	Errors ValidationErrors `json:"errors,omitempty"`
	Banner Banner           `json:"banner"`
}

// CreateUser adds a manager or an employee on behalf of HR.
type CreateUser struct {
	api  PeopleAPI
	opts Options

	mu     sync.Mutex
	form   CreateUserForm
	errs   ValidationErrors
	banner Banner
}

func NewCreateUser(api PeopleAPI, opts Options) *CreateUser {
	return &CreateUser{api: api, opts: opts.withDefaults()}
}

func (c *CreateUser) View() CreateUserView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *CreateUser) viewLocked() CreateUserView {
	form := c.form
	form.Password = ""
	return CreateUserView{Form: form, Errors: c.errs, Banner: c.banner.visible(c.opts.Now())}
}

// Submit validates the form locally and creates the user. Managers are
// linked to an HR; employees to an HR and a manager.
func (c *CreateUser) Submit(ctx context.Context, form CreateUserForm) (CreateUserView, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Username = strings.TrimSpace(form.Username)
	form.Role = strings.TrimSpace(form.Role)
	if form.Role != "Employee" {
		form.ManagerID = 0
	}

	errs := form.validate()

	c.mu.Lock()
	c.form = form
	if len(errs) > 0 {
		defer c.mu.Unlock()
		c.errs = errs
		return c.viewLocked(), errs
	}
	c.errs = nil
	c.mu.Unlock()

	in := hrapi.PersonInput{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Username: form.Username,
		Password: form.Password,
		Role:     form.Role,
	}
	var err error
	if form.Role == "Manager" {
		err = c.api.AddManager(ctx, in, form.HRID)
	} else {
		err = c.api.AddUser(ctx, in, form.HRID, form.ManagerID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	expires := c.opts.Now().Add(c.opts.BannerTTL)
	if err != nil {
		c.opts.Logger.WithError(err).WithFields(logrus.Fields{"role": form.Role, "username": form.Username}).Warn("create user failed")
		c.banner.clear()
		c.banner.fail("Error creating user: " + hrapi.Message(err))
		c.banner.expireAt(expires)
		return c.viewLocked(), nil
	}
	c.form = CreateUserForm{}
	if form.Role == "Manager" {
		c.banner.succeed("A new Manager is created")
	} else {
		c.banner.succeed("A new Employee is added")
	}
	c.banner.expireAt(expires)
	return c.viewLocked(), nil
}
