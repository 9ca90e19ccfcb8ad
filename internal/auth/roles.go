package auth

// Role is the kind of principal a credential resolves to.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleScholar           Role = "scholar"
	RoleApprovedApplicant Role = "approved_applicant"
)

func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions
const (
	PermViewApplications   = "view_applications"
	PermReviewApplications = "review_applications"
	PermViewScholars       = "view_scholars"
	PermViewMoA            = "view_moa"
	PermViewProfile        = "view_profile"
	PermUpdateProfile      = "update_profile"
	PermSubmitMoA          = "submit_moa"
	PermViewCertifications = "view_certifications"
)

var rolePermissions = map[Role][]string{
	RoleAdmin:             {PermViewApplications, PermReviewApplications, PermViewScholars, PermViewMoA},
	RoleScholar:           {PermViewProfile, PermUpdateProfile, PermSubmitMoA, PermViewCertifications},
	RoleApprovedApplicant: {PermViewProfile, PermSubmitMoA},
}

// Permissions returns a copy of the permission list granted to the role.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func (r Role) Can(permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}
