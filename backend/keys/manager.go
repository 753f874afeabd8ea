// Package keys resolves the Gemini API key for a session: an ephemeral
// session key wins, then the key saved on the user's record, else none.
package keys

import (
	"errors"
	"strings"

	"ailearn/backend/session"
	"ailearn/backend/store"
)

// ErrBadKeyFormat means the key failed the superficial format check. The
// remote provider is the real validator; a well-formed key can still be
// rejected at call time.
var ErrBadKeyFormat = errors.New("invalid API key format, must start with 'AIza' and be longer than 30 characters")

// Key sources reported alongside a resolved key.
const (
	SourceSession = "session"
	SourceSaved   = "saved"
)

// ValidateFormat checks the Google API key shape: "AIza" prefix, length
// over 30.
func ValidateFormat(key string) error {
	if !strings.HasPrefix(key, "AIza") || len(key) <= 30 {
		return ErrBadKeyFormat
	}
	return nil
}

// Mask hides all but the last four characters of a key for display.
func Mask(key string) string {
	if len(key) < 4 {
		return "********"
	}
	return "********" + key[len(key)-4:]
}

// Resolve picks the key for sess. A key already held in the session is used
// as-is; otherwise a key saved on the user's record is loaded into the
// session. ok is false when no key is available, which must block any model
// call.
func Resolve(sess *session.Session, userStore *store.UserStore) (key, source string, ok bool) {
	if sess.APIKey != "" {
		return sess.APIKey, SourceSession, true
	}
	if saved, found := userStore.GetAPIKey(sess.Username); found {
		sess.APIKey = saved
		return saved, SourceSaved, true
	}
	return "", "", false
}

// Remember stores the key on the session and, when persist is set, on the
// user's record as well.
func Remember(sess *session.Session, userStore *store.UserStore, key string, persist bool) error {
	if err := ValidateFormat(key); err != nil {
		return err
	}
	if persist {
		if err := userStore.SaveAPIKey(sess.Username, key); err != nil {
			return err
		}
	}
	sess.APIKey = key
	return nil
}
