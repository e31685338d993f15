package enums

import "fmt"

type SupportStatus string

const (
	SupportStatusOpen     SupportStatus = "open"
	SupportStatusAnswered SupportStatus = "answered"
	SupportStatusClosed   SupportStatus = "closed"
)

func ParseSupportStatus(value string) (SupportStatus, error) {
	switch SupportStatus(value) {
	case SupportStatusOpen, SupportStatusAnswered, SupportStatusClosed:
		return SupportStatus(value), nil
	}
	return "", fmt.Errorf("invalid support status %q", value)
}
