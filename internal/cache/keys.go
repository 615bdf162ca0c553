package cache

import "fmt"

func SessionStatusKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func RateLimitKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:%s", clientIP)
}
