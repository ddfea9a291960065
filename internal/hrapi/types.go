package hrapi

// Ref is the {"id": n} shape the HR API uses for hr and manager links.
type Ref struct {
	ID int64 `json:"id"`
}

// Person is an employee or manager record as served by the HR API.
type Person struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	HR       *Ref   `json:"hr,omitempty"`
	Manager  *Ref   `json:"manager,omitempty"`
}

func (p Person) HRID() int64 {
	if p.HR == nil {
		return 0
	}
	return p.HR.ID
}

func (p Person) ManagerID() int64 {
	if p.Manager == nil {
		return 0
	}
	return p.Manager.ID
}

// PersonInput is the body of create and edit calls for users and managers.
type PersonInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

// UserDetails is the body of POST /userDetails/add. An empty password is
// left out so the stored one stays.
type UserDetails struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	HR       Ref    `json:"hr"`
	Manager  Ref    `json:"manager"`
}

type Task struct {
	ID               int64  `json:"id"`
	TaskName         string `json:"taskname"`
	Deadline         string `json:"deadline"`
	CompletionStatus bool   `json:"completionStatus"`
}

type TaskInput struct {
	TaskName string `json:"taskname"`
	Deadline string `json:"deadline"`
}

type LeaveRequester struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type LeaveRequest struct {
	ID        int64          `json:"id"`
	User      LeaveRequester `json:"user"`
	Reason    string         `json:"reason"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
}

// LeaveScope selects which approver's queue a leave call addresses.
type LeaveScope string

const (
	LeaveScopeHR      LeaveScope = "hr"
	LeaveScopeManager LeaveScope = "manager"
)

func (s LeaveScope) Valid() bool {
	return s == LeaveScopeHR || s == LeaveScopeManager
}

// SignInEndpoint is one of the three role-specific authentication paths.
type SignInEndpoint string

const (
	HRSignIn      SignInEndpoint = "/hr/signIn"
	ManagerLogin  SignInEndpoint = "/manager/login"
	EmployeeLogin SignInEndpoint = "/user/signIn"
)

func (e SignInEndpoint) Valid() bool {
	switch e {
	case HRSignIn, ManagerLogin, EmployeeLogin:
		return true
	}
	return false
}
