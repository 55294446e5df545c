package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var timeNow = time.Now

// checkID rejects identifiers that cannot name any record.
func checkID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: invalid id format", common.ErrorValidation)
	}
	return nil
}

// canModify reports whether caller may change a record owned by ownerID.
func canModify(caller *models.PublicUser, ownerID string) bool {
	return caller.IsAdmin() || (caller != nil && caller.ID == ownerID)
}

// Slugify lowercases s, drops diacritics and joins the remaining letter and
// digit runs with hyphens: "Café Sports!" -> "cafe-sports".
func Slugify(s string) string {
	// chains are stateful, build one per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
