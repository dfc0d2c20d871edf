// Package credentials generates drill logins and school invitation codes.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/gosimple/slug"
)

var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "merry", "noble", "quick", "zippy", "bold", "cosmic", "golden",
	"busy", "buzzy", "gentle", "eager", "daring", "lively", "snappy", "royal",
}

var nouns = []string{
	"bee", "hive", "honey", "meadow", "clover", "pollen", "daisy", "tulip",
	"comet", "rocket", "owl", "fox", "otter", "panda", "falcon", "dolphin",
	"acorn", "maple", "river", "pebble", "lantern", "quill", "atlas", "echo",
}

// invitationAlphabet drops look-alike characters
const invitationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxUsernameAttempts bounds the numeric suffixes tried for a taken username
const maxUsernameAttempts = 1000

// BaseUsername derives "first.last" in lowercase ASCII
func BaseUsername(firstName, lastName string) string {
	base := strings.ReplaceAll(slug.Make(firstName+" "+lastName), "-", ".")
	if base == "" {
		return "student"
	}
	return base
}

// GenerateUsername returns the first free username for a student.
// taken reports whether a candidate is already in use.
func GenerateUsername(firstName, lastName string, taken func(string) (bool, error)) (string, error) {
	base := BaseUsername(firstName, lastName)

	candidate := base
	for i := 2; i <= maxUsernameAttempts; i++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("no free username for %s", base)
}

// GeneratePassword returns a practice code like "sunny-clover-42"
func GeneratePassword() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(90))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d", adjective, noun, n.Int64()+10), nil
}

// GenerateInvitationCode returns a code like "HILL-7KQ2XM" for a school portal
func GenerateInvitationCode(schoolSlug string) (string, error) {
	prefix := strings.ToUpper(strings.ReplaceAll(schoolSlug, "-", ""))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if prefix == "" {
		prefix = "BEE"
	}

	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(invitationAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = invitationAlphabet[num.Int64()]
	}
	return prefix + "-" + string(code), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
