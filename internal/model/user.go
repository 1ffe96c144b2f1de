package model

import "github.com/golang-jwt/jwt/v5"

// Roles recognised by the access policy.
const (
	RoleAdmin        = "admin"
	RoleShopOwner    = "shop_owner"
	RolePhoneChecker = "phone_checker"
)

// User is a dashboard account.
type User struct {
	ID       string `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username string `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password string `json:"password,omitempty" gorm:"type:varchar(255);not null"`
	Role     string `json:"role" gorm:"type:varchar(50);not null"`
	ShopName string `json:"shopName,omitempty" gorm:"type:varchar(150)"`
	Phone    string `json:"phone,omitempty" gorm:"type:varchar(20)"`
}

// JWTClaims are the claims carried by an access token.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
