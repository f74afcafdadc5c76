package util

import (
	"fmt"
	"math/rand"
)

var names = []string{
	"Owl",
	"Falcon",
	"Fox",
	"Otter",
	"Heron",
	"Lynx",
}

// GenerateAlias builds a throwaway display name for anonymous feedback
// submissions.
func GenerateAlias() string {
	return fmt.Sprintf("Anon %v", names[rand.Intn(len(names))])
}
