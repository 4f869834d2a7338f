// Package password сверяет пароли из конфига. Пароль в конфиге может быть
// записан открытым текстом или bcrypt-хешем.
package password

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var hashPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// GetHash возвращает bcrypt-хеш пароля для записи в конфиг.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// IsHash сообщает, похожа ли строка на bcrypt-хеш.
func IsHash(stored string) bool {
	for _, p := range hashPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}

// Match сравнивает введённый пароль с сохранённым значением.
// Открытый текст сравнивается за постоянное время.
func Match(stored, given string) bool {
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
