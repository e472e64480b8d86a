package entity

type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleServiceProvider UserRole = "serviceprovider"
	RoleAdmin           UserRole = "admin"
)

type User struct {
	Base
	FullName     string   `db:"full_name"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
	// PictureRef is the storage reference of the profile picture
	PictureRef *string `db:"picture_ref"`
}

// PhoneOrEmpty returns the phone number or "" when none is set
func (u *User) PhoneOrEmpty() string {
	if u == nil || u.Phone == nil {
		return ""
	}
	return *u.Phone
}
