package models

import (
	"fmt"
	"strings"
	"time"

	"agrimarket-backend/internal/utils"
)

// UserRole represents user roles in the marketplace
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

var roleAliases = map[string]UserRole{
	"buyer":          UserRoleBuyer,
	"acheteur":       UserRoleBuyer,
	"client":         UserRoleBuyer,
	"customer":       UserRoleBuyer,
	"seller":         UserRoleSeller,
	"vendeur":        UserRoleSeller,
	"producteur":     UserRoleSeller,
	"producer":       UserRoleSeller,
	"admin":          UserRoleAdmin,
	"administrateur": UserRoleAdmin,
}

// NormalizeRole maps the marketplace API's role names onto the dashboard roles.
// Unknown roles fall back to buyer, the least privileged dashboard.
func NormalizeRole(role string) UserRole {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(role))]; ok {
		return r
	}
	return UserRoleBuyer
}

// SessionUser is the user summary returned by the marketplace API on login
type SessionUser struct {
	ID    FlexibleID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the marketplace API login payload
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        SessionUser `json:"user"`
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	TypeID               string `json:"type_id"`
	RegionID             string `json:"region_id"`
	CityID               string `json:"city_id"`
}

// Validate checks the registration form before it is forwarded
func (r RegisterRequest) Validate() error {
	var v utils.Validator
	v.Required("name", r.Name)
	v.Required("email", r.Email)
	v.Email("email", r.Email)
	v.Required("phone", r.Phone)
	v.Phone("phone", r.Phone)
	v.Required("type_id", r.TypeID)
	v.Required("region_id", r.RegionID)
	v.Required("city_id", r.CityID)
	if len(r.Password) < 8 {
		v.Add("password", "password must be at least 8 characters")
	}
	if r.Password != r.PasswordConfirmation {
		v.Add("password_confirmation", "passwords do not match")
	}
	return v.Err()
}

// AccountType is a registration option (producer, buyer, cooperative...)
type AccountType struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Region is a registration option
type Region struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// City is a registration option scoped to a region
type City struct {
	ID       FlexibleID `json:"id"`
	Name     string     `json:"name"`
	RegionID FlexibleID `json:"regionId,omitempty"`
}

// Seller profile sections, each fetched and saved independently
const (
	ProfileSectionPersonal    = "personal"
	ProfileSectionBusiness    = "business"
	ProfileSectionBank        = "bank"
	ProfileSectionPreferences = "preferences"
)

// ProfileSections lists the editable seller profile sections
var ProfileSections = []string{ProfileSectionPersonal, ProfileSectionBusiness, ProfileSectionBank, ProfileSectionPreferences}

// PersonalInfo is the personal section of a seller profile
type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// BusinessInfo is the business section of a seller profile
type BusinessInfo struct {
	BusinessName string `json:"businessName"`
	BusinessType string `json:"businessType"`
	Description  string `json:"description,omitempty"`
	Region       string `json:"region,omitempty"`
	City         string `json:"city,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
}

// BankInfo is the payout section of a seller profile
type BankInfo struct {
	BankName      string `json:"bankName"`
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	MobileMoney   string `json:"mobileMoney,omitempty"`
}

// SellerPreferences is the preferences section of a seller profile
type SellerPreferences struct {
	Language           string `json:"language"`
	Currency           string `json:"currency"`
	EmailNotifications bool   `json:"emailNotifications"`
	SMSNotifications   bool   `json:"smsNotifications"`
	AutoConfirmOrders  bool   `json:"autoConfirmOrders"`
}

// ProfileStats is the read-only stats block on the seller profile
type ProfileStats struct {
	TotalSales  int       `json:"totalSales"`
	TotalOrders int       `json:"totalOrders"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	MemberSince time.Time `json:"memberSince"`
}

// ValidateProfileSection checks required fields of a decoded profile section
func ValidateProfileSection(section interface{}) error {
	var v utils.Validator
	switch s := section.(type) {
	case *PersonalInfo:
		v.Required("firstName", s.FirstName)
		v.Required("lastName", s.LastName)
		v.Required("email", s.Email)
		v.Email("email", s.Email)
		v.Phone("phone", s.Phone)
	case *BusinessInfo:
		v.Required("businessName", s.BusinessName)
		v.Required("businessType", s.BusinessType)
	case *BankInfo:
		v.Required("accountHolder", s.AccountHolder)
		if s.AccountNumber == "" && s.MobileMoney == "" {
			v.Add("accountNumber", "accountNumber or mobileMoney is required")
		}
	case *SellerPreferences:
		v.OneOf("language", s.Language, "fr", "en")
	default:
		return fmt.Errorf("unknown profile section %T", section)
	}
	return v.Err()
}

// NewProfileSection returns an empty value for the named section
func NewProfileSection(name string) (interface{}, bool) {
	switch name {
	case ProfileSectionPersonal:
		return &PersonalInfo{}, true
	case ProfileSectionBusiness:
		return &BusinessInfo{}, true
	case ProfileSectionBank:
		return &BankInfo{}, true
	case ProfileSectionPreferences:
		return &SellerPreferences{}, true
	}
	return nil, false
}

// FlexibleID accepts both numeric and string identifiers from the marketplace API
type FlexibleID string

// UnmarshalJSON implements custom JSON unmarshaling for numeric or string ids
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	str := strings.TrimSpace(string(data))
	if str == "null" {
		*id = ""
		return nil
	}
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	*id = FlexibleID(str)
	return nil
}

// String returns the id as a string
func (id FlexibleID) String() string {
	return string(id)
}

// FlexibleDate is a custom type that can handle both date and datetime formats
type FlexibleDate struct {
	time.Time
}

// UnmarshalJSON implements custom JSON unmarshaling for flexible date parsing
func (fd *FlexibleDate) UnmarshalJSON(data []byte) error {
	// Remove quotes from JSON string
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	// Skip empty strings
	if str == "" || str == "null" {
		return nil
	}

	// Try different date formats
	formats := []string{
		"2006-01-02",           // Date only (YYYY-MM-DD)
		time.RFC3339Nano,       // Full datetime with timezone
		"2006-01-02T15:04:05Z", // Full datetime UTC
		"2006-01-02T15:04:05",  // Full datetime without timezone
		"2006-01-02 15:04:05",  // Date and time with space
		"02/01/2006",           // French short date
	}

	for _, format := range formats {
		if t, err := time.Parse(format, str); err == nil {
			fd.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", str)
}
