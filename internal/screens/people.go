package screens

import (
	"strings"
	"time"

	"indus/hrportal/internal/hrapi"
)

// PersonKind selects which collection the HR people list shows.
type PersonKind string

const (
	KindEmployee PersonKind = "employee"
	KindManager  PersonKind = "manager"
)

func ParsePersonKind(s string) (PersonKind, bool) {
	switch PersonKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindEmployee, "":
		return KindEmployee, true
	case KindManager:
		return KindManager, true
	}
	return "", false
}

// title is the capitalised noun used in banners.
func (k PersonKind) title() string {
	if k == KindManager {
		return "Manager"
	}
	return "Employee"
}

// PersonDraft is the inline edit form of one row. An empty Password keeps
// the stored one.
type PersonDraft struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type PersonRow struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Username  string       `json:"username"`
	Role      string       `json:"role"`
	HRID      int64        `json:"hrId,omitempty"`
	ManagerID int64        `json:"managerId,omitempty"`
	Editing   bool         `json:"editing"`
	Draft     *PersonDraft `json:"draft,omitempty"`
}

type PeopleView struct {
	Kind   PersonKind  `json:"kind,omitempty"`
	Loaded bool        `json:"loaded"`
	Rows   []PersonRow `json:"rows"`
	Banner Banner      `json:"banner"`
}

// personTable holds one fetched collection and its row drafts. Callers hold
// the owning screen's mutex.
type personTable struct {
	people []hrapi.Person
	drafts map[int64]PersonDraft
	loaded bool
}

func (t *personTable) reset(people []hrapi.Person) {
	t.people = people
	t.drafts = make(map[int64]PersonDraft)
	t.loaded = true
}

func (t *personTable) find(id int64) (hrapi.Person, bool) {
	for _, p := range t.people {
		if p.ID == id {
			return p, true
		}
	}
	return hrapi.Person{}, false
}

func (t *personTable) beginEdit(id int64) error {
	p, ok := t.find(id)
	if !ok {
		return ErrNotFound
	}
	if t.drafts == nil {
		t.drafts = make(map[int64]PersonDraft)
	}
	t.drafts[id] = PersonDraft{
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Role:     p.Role,
		Username: p.Username,
		Password: p.Password,
	}
	return nil
}

func (t *personTable) setDraft(id int64, d PersonDraft) error {
	cur, ok := t.drafts[id]
	if !ok {
		if _, exists := t.find(id); !exists {
			return ErrNotFound
		}
		return ErrNotEditing
	}
	if d.Password == "" {
		d.Password = cur.Password
	}
	t.drafts[id] = d
	return nil
}

func (t *personTable) draft(id int64) (PersonDraft, hrapi.Person, error) {
	p, ok := t.find(id)
	if !ok {
		return PersonDraft{}, hrapi.Person{}, ErrNotFound
	}
	d, ok := t.drafts[id]
	if !ok {
		return PersonDraft{}, hrapi.Person{}, ErrNotEditing
	}
	return d, p, nil
}

func (t *personTable) cancel(id int64) error {
	if _, ok := t.find(id); !ok {
		return ErrNotFound
	}
	delete(t.drafts, id)
	return nil
}

// patch merges the saved draft into the row with the same id and closes its
// edit state. Other rows are untouched.
func (t *personTable) patch(id int64, in hrapi.PersonInput) {
	for i := range t.people {
		if t.people[i].ID != id {
			continue
		}
		p := &t.people[i]
		p.Name = in.Name
		p.Email = in.Email
		p.Phone = in.Phone
		p.Role = in.Role
		p.Username = in.Username
		if in.Password != "" {
			p.Password = in.Password
		}
	}
	delete(t.drafts, id)
}

func (t *personTable) remove(id int64) {
	kept := t.people[:0:0]
	for _, p := range t.people {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	t.people = kept
	delete(t.drafts, id)
}

// view never exposes stored passwords.
func (t *personTable) view(kind PersonKind, banner Banner, now time.Time) PeopleView {
	rows := make([]PersonRow, 0, len(t.people))
	for _, p := range t.people {
		row := PersonRow{
			ID:        p.ID,
			Name:      p.Name,
			Email:     p.Email,
			Phone:     p.Phone,
			Username:  p.Username,
			Role:      p.Role,
			HRID:      p.HRID(),
			ManagerID: p.ManagerID(),
		}
		if d, ok := t.drafts[p.ID]; ok {
			d.Password = ""
			row.Editing = true
			row.Draft = &d
		}
		rows = append(rows, row)
	}
	return PeopleView{Kind: kind, Loaded: t.loaded, Rows: rows, Banner: banner.visible(now)}
}

// blank reports whether any of the listed draft fields is empty.
func (d PersonDraft) blank(withCredentials bool) bool {
	fields := []string{d.Name, d.Email, d.Phone, d.Role}
	if withCredentials {
		fields = append(fields, d.Username, d.Password)
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func (d PersonDraft) input() hrapi.PersonInput {
	return hrapi.PersonInput{
		Name:     strings.TrimSpace(d.Name),
		Email:    strings.TrimSpace(d.Email),
		Phone:    strings.TrimSpace(d.Phone),
		Username: strings.TrimSpace(d.Username),
		Password: d.Password,
		Role:     strings.TrimSpace(d.Role),
	}
}

const (
	msgFetchFailed    = "Failed to fetch data"
	msgFieldsRequired = "All fields are required"
)

func fieldsRequired() ValidationErrors {
	return ValidationErrors{"_": msgFieldsRequired}
}
