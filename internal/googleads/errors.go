package googleads

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinels matched by errors.Is against *APIError.
var (
	ErrAuthorization = errors.New("google ads authorization error")
	ErrNotFound      = errors.New("google ads resource not found")
)

// ErrorKind classifies an upstream failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindAuthorization
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// APIError is a non-2xx response from the Google Ads API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Codes      []string
	RequestID  string
	Hint       string
	Kind       ErrorKind
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Codes) > 0 {
		return fmt.Sprintf("google ads api error (%d %s): %s", e.StatusCode, strings.Join(e.Codes, ", "), msg)
	}
	return fmt.Sprintf("google ads api error (%d): %s", e.StatusCode, msg)
}

// Is matches ErrAuthorization and ErrNotFound by kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthorization:
		return e.Kind == KindAuthorization
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// Hint returns the remediation hint of err, if it is an *APIError.
func Hint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Hint
	}
	return ""
}

const (
	hintDeveloperToken = "Your developer token is only approved for test accounts. To access production accounts, you need to apply for Basic or Standard access at: https://developers.google.com/google-ads/api/docs/access-levels"
	hintNotEnabled     = "This Google Ads account is not enabled or has been deactivated. Please check the account status in Google Ads."
	hintPermission     = "The credentials cannot access this account. If it is managed through a manager account, check that GOOGLE_ADS_MCC_ID is set to that manager."
	hintActiveAccount  = "Set an active account first: run list_accounts, then set_active_account with a client account id."
)

var notFoundCodes = map[string]bool{
	"CUSTOMER_NOT_FOUND":  true,
	"RESOURCE_NOT_FOUND":  true,
	"INVALID_CUSTOMER_ID": true,
	"NOT_FOUND":           true,
	"CAMPAIGN_NOT_FOUND":  true,
	"AD_GROUP_NOT_FOUND":  true,
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Errors []struct {
				ErrorCode map[string]any `json:"errorCode"`
				Message   string         `json:"message"`
			} `json:"errors"`
			RequestID string `json:"requestId"`
		} `json:"details"`
	} `json:"error"`
}

func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil {
		e.Message = strings.TrimSpace(string(body))
	} else {
		e.Status = env.Error.Status
		e.Message = env.Error.Message
		authCategory := false
		for _, d := range env.Error.Details {
			if d.RequestID != "" {
				e.RequestID = d.RequestID
			}
			for _, fe := range d.Errors {
				if fe.Message != "" && (e.Message == "" || strings.HasPrefix(e.Message, "Request contains an invalid argument")) {
					e.Message = fe.Message
				}
				keys := make([]string, 0, len(fe.ErrorCode))
				for k := range fe.ErrorCode {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					if k == "authorizationError" || k == "authenticationError" {
						authCategory = true
					}
					if s, ok := fe.ErrorCode[k].(string); ok {
						e.Codes = append(e.Codes, s)
					}
				}
			}
		}
		if authCategory {
			e.Kind = KindAuthorization
		}
	}
	classify(e)
	return e
}

func classify(e *APIError) {
	has := func(code string) bool {
		for _, c := range e.Codes {
			if c == code {
				return true
			}
		}
		return false
	}

	if e.Kind == KindOther {
		switch {
		case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden || e.Status == "PERMISSION_DENIED" || e.Status == "UNAUTHENTICATED":
			e.Kind = KindAuthorization
		case e.StatusCode == http.StatusNotFound || e.Status == "NOT_FOUND":
			e.Kind = KindNotFound
		default:
			for _, c := range e.Codes {
				if notFoundCodes[c] {
					e.Kind = KindNotFound
					break
				}
			}
		}
	}

	switch {
	case has("DEVELOPER_TOKEN_NOT_APPROVED"):
		e.Hint = hintDeveloperToken
	case has("CUSTOMER_NOT_ENABLED"):
		e.Hint = hintNotEnabled
	case has("USER_PERMISSION_DENIED"):
		e.Hint = hintPermission
	case e.Kind == KindAuthorization || e.Kind == KindNotFound:
		e.Hint = hintActiveAccount
	}
}
