package session

// User is the authenticated session. It is built once at login and never mutated.
type User struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Domain     string `json:"userDomain"` // empty for local accounts
	BranchCode string `json:"branchCode"`
	BranchName string `json:"branchName"`
	Role       string `json:"userRole"`
	Level      string `json:"userLevel"`
	Department string `json:"userDepartment"`
	Profile    string `json:"userProfile"`
	Token      string `json:"-"` // backend session token, never sent to the browser in clear
}

// IsLocal reports whether the account is a local one rather than a corporate domain account.
func (u *User) IsLocal() bool {
	return u.Domain == ""
}

// Complete reports whether every required attribute is populated.
func (u *User) Complete() bool {
	return u != nil &&
		u.UserID != "" &&
		u.UserName != "" &&
		u.BranchCode != "" &&
		u.Role != "" &&
		u.Level != "" &&
		u.Profile != "" &&
		u.Token != ""
}

// HasProfile reports whether the user's profile code is one of codes.
func (u *User) HasProfile(codes ...string) bool {
	for _, c := range codes {
		if u.Profile == c {
			return true
		}
	}
	return false
}

// MenuItem is a node of the user-specific navigation tree.
type MenuItem struct {
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Path     string     `json:"path,omitempty"`
	Children []MenuItem `json:"children,omitempty"`
}

var profileLabels = map[string]string{
	"OPR": "Branch Operator",
	"SPV": "Branch Supervisor",
	"CMP": "Compliance Officer",
	"ADM": "Administrator",
}

// ProfileLabel maps a profile code to its display label; unknown codes are returned as is.
func ProfileLabel(code string) string {
	if label, ok := profileLabels[code]; ok {
		return label
	}
	return code
}
