// Package pagescript locates and decodes the framework-hydration payloads
// embedded in the claim page HTML. The page ships its data as script code,
// not JSON; candidates are recovered with jsliteral's grammar-subset parser
// and malformed candidates are skipped, never fatal.
package pagescript

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/jsliteral"
	"github.com/Ramsey-B/fern/pkg/models"
)

var (
	// resolveCallPattern matches component resolve calls whose first argument
	// is a brace-delimited object literal.
	resolveCallPattern = regexp.MustCompile(`\.resolve\s*\(\s*\{`)

	// kitStartPattern marks the hydration bootstrap call carrying member and
	// citizen data in its options object.
	kitStartPattern = regexp.MustCompile(`kit\.start\s*\(`)

	// sessionTokenPattern extracts the randomized session token the page
	// embeds in its global variable names. Diagnostic only.
	sessionTokenPattern = regexp.MustCompile(`__sveltekit_(\w+)`)
)

// Extractor parses settlement payloads out of raw HTML.
type Extractor struct {
	logger ectologger.Logger
}

// NewExtractor creates a new page-script extractor.
func NewExtractor(logger ectologger.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractSettlement scans the HTML for the inventory payload and, when found,
// merges in the member/citizen payload. Returns (nil, nil) when the page holds
// no settlement data; callers treat that as zero items. A failed member
// payload degrades to an inventory-only result.
func (e *Extractor) ExtractSettlement(ctx context.Context, html string) (*models.RawSettlementPayload, error) {
	log := e.logger.WithContext(ctx)

	if token := sessionTokenPattern.FindStringSubmatch(html); len(token) > 1 {
		log.WithFields(map[string]any{"session_token": token[1]}).Debug("Found hydration session token")
	}

	payload := e.findInventoryPayload(ctx, html)
	if payload == nil {
		log.Warn("No inventory payload found in page")
		return nil, nil
	}

	e.mergeMemberPayload(ctx, html, payload)

	log.WithFields(map[string]any{
		"buildings": len(payload.Buildings),
		"items":     len(payload.Items),
		"cargos":    len(payload.Cargos),
		"members":   len(payload.Members),
		"citizens":  len(payload.Citizens),
	}).Info("Extracted settlement payload from page")

	return payload, nil
}

// findInventoryPayload scans every resolve-call candidate and returns the
// first whose data carries buildings, items, and cargos.
func (e *Extractor) findInventoryPayload(ctx context.Context, html string) *models.RawSettlementPayload {
	log := e.logger.WithContext(ctx)

	for _, loc := range resolveCallPattern.FindAllStringIndex(html, -1) {
		literal, err := jsliteral.CaptureObject(html, loc[0])
		if err != nil {
			log.WithError(err).Debug("Skipping unbalanced resolve candidate")
			continue
		}

		value, err := jsliteral.Parse(literal)
		if err != nil {
			log.WithError(err).Debug("Skipping unparseable resolve candidate")
			continue
		}

		obj, ok := value.(map[string]any)
		if !ok {
			continue
		}
		data, ok := obj["data"].(map[string]any)
		if !ok {
			continue
		}
		if !hasKeys(data, "buildings", "items", "cargos") {
			continue
		}

		payload := &models.RawSettlementPayload{}
		if err := decodeInto(data, payload); err != nil {
			log.WithError(err).Warn("Inventory payload did not match expected shape")
			continue
		}
		return payload
	}
	return nil
}

// mergeMemberPayload finds the hydration bootstrap call and copies claim,
// member, and citizen data onto the payload. Failures degrade silently to
// an inventory-only result.
func (e *Extractor) mergeMemberPayload(ctx context.Context, html string, payload *models.RawSettlementPayload) {
	log := e.logger.WithContext(ctx)

	loc := kitStartPattern.FindStringIndex(html)
	if loc == nil {
		log.Debug("No kit start payload found; returning inventory-only result")
		return
	}

	literal, err := jsliteral.CaptureObject(html, loc[1])
	if err != nil {
		log.WithError(err).Warn("Failed to capture kit start payload")
		return
	}

	value, err := jsliteral.Parse(literal)
	if err != nil {
		log.WithError(err).Warn("Failed to parse kit start payload")
		return
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return
	}
	nodes, ok := obj["data"].([]any)
	if !ok || len(nodes) < 2 {
		log.Debug("Kit start payload has no second data node")
		return
	}
	node, ok := nodes[1].(map[string]any)
	if !ok {
		return
	}
	data, ok := node["data"].(map[string]any)
	if !ok {
		return
	}

	var member struct {
		Claim        *models.RawClaim    `json:"claim"`
		Members      []models.RawMember  `json:"members"`
		MemberCount  int                 `json:"memberCount"`
		Citizens     []models.RawCitizen `json:"citizens"`
		CitizenCount int                 `json:"citizenCount"`
		SkillNames   map[string]string   `json:"skillNames"`
	}
	if err := decodeInto(data, &member); err != nil {
		log.WithError(err).Warn("Member payload did not match expected shape")
		return
	}

	payload.Claim = member.Claim
	payload.Members = member.Members
	payload.MemberCount = member.MemberCount
	payload.Citizens = member.Citizens
	payload.CitizenCount = member.CitizenCount
	payload.SkillNames = member.SkillNames
}

// decodeInto converts a parsed literal into a typed struct via JSON
// round-tripping, so struct tags drive the field mapping.
func decodeInto(data map[string]any, dest any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
