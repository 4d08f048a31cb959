package util

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxPostLength caps a post's content, counted in characters.
const MaxPostLength = 280

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// ValidateUsername 用户名规则：3-20 位，仅字母、数字、下划线
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is empty")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username must be 3-20 letters, digits or underscores")
	}
	return nil
}

// ValidateEmail 验证邮箱（必填，且为单个地址）
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 255 {
		return fmt.Errorf("email too long, max 255 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword only enforces presence and the bcrypt input limit.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is empty")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password too long, max %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateContent 验证帖子内容（不能为空白且长度合理）
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is empty")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return fmt.Errorf("content too long, max %d characters", MaxPostLength)
	}
	return nil
}
