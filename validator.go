package samlgate

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"
	rtvalidator "github.com/mattermost/xml-roundtrip-validator"
	dsig "github.com/russellhaering/goxmldsig"
	"github.com/russellhaering/goxmldsig/etreeutils"
	"go.uber.org/zap"

	"github.com/philiph/samlgate/internal/adapters/driven/decrypt"
	"github.com/philiph/samlgate/internal/adapters/driven/metrics"
	"github.com/philiph/samlgate/internal/adapters/driven/signature"
	"github.com/philiph/samlgate/internal/core/domain"
	"github.com/philiph/samlgate/internal/core/ports"
)

// DefaultClockSkew is the default tolerance applied symmetrically to all
// lifetime comparisons to compensate for drift between SP and IdP clocks.
const DefaultClockSkew = 3 * time.Minute

// ResponseValidator validates inbound SAML2 responses for one service
// provider: it checks that an assertion is cryptographically trustworthy,
// freshly issued, addressed to this SP, and not replayed, then extracts the
// authenticated subject and attributes.
//
// A validator is immutable after construction and safe for concurrent use;
// it holds no state across calls.
type ResponseValidator struct {
	sp        ServiceProviderConfig
	issuers   map[string]struct{}
	verifier  ports.SignatureVerifier
	decryptor ports.Decryptor
	clock     *dsig.Clock
	skew      time.Duration
	logger    *zap.Logger
	metrics   ports.MetricsRecorder
}

// ValidatorOption configures a ResponseValidator.
type ValidatorOption func(*ResponseValidator)

// WithClock sets the time source for lifetime checks. Tests use
// dsig.NewFakeClockAt to freeze validation time.
func WithClock(clock *dsig.Clock) ValidatorOption {
	return func(v *ResponseValidator) {
		v.clock = clock
	}
}

// WithClockSkew sets the allowed clock skew for lifetime checks.
func WithClockSkew(skew time.Duration) ValidatorOption {
	return func(v *ResponseValidator) {
		v.skew = skew
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) ValidatorOption {
	return func(v *ResponseValidator) {
		v.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(recorder ports.MetricsRecorder) ValidatorOption {
	return func(v *ResponseValidator) {
		v.metrics = recorder
	}
}

// WithSignatureVerifier replaces the default goxmldsig verifier built from
// the IdP's certificates.
func WithSignatureVerifier(verifier ports.SignatureVerifier) ValidatorOption {
	return func(v *ResponseValidator) {
		v.verifier = verifier
	}
}

// WithDecryptor replaces the default xmlenc decryptor built from the SP's
// decryption keys.
func WithDecryptor(decryptor ports.Decryptor) ValidatorOption {
	return func(v *ResponseValidator) {
		v.decryptor = decryptor
	}
}

// NewResponseValidator creates a validator for responses issued by idp and
// addressed to sp.
func NewResponseValidator(sp ServiceProviderConfig, idp IdentityProviderConfig, opts ...ValidatorOption) (*ResponseValidator, error) {
	if err := sp.validate(); err != nil {
		return nil, err
	}
	if idp.EntityID == "" {
		return nil, domain.Rejection(domain.ErrCodeServiceError, "identity provider entity ID is required")
	}

	v := &ResponseValidator{
		sp:      sp,
		issuers: map[string]struct{}{idp.EntityID: {}},
		skew:    DefaultClockSkew,
		logger:  zap.NewNop(),
		metrics: metrics.NewNoopMetricsRecorder(),
	}
	for _, issuer := range idp.AdditionalIssuers {
		v.issuers[issuer] = struct{}{}
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.clock == nil {
		v.clock = dsig.NewRealClock()
	}
	if v.verifier == nil {
		if len(idp.Certificates) == 0 {
			return nil, domain.Rejection(domain.ErrCodeServiceError,
				"no signing certificate configured for IdP %q", idp.EntityID)
		}
		v.verifier = signature.NewXMLDsigVerifierWithCerts(idp.Certificates).
			WithClock(v.clock).
			WithLogger(v.logger)
	}
	if v.decryptor == nil && len(sp.DecryptionKeys) > 0 {
		v.decryptor = decrypt.NewXMLEncDecryptor(sp.DecryptionKeys).WithLogger(v.logger)
	}
	return v, nil
}

// Validate runs the full check sequence over one raw response document.
// allowedRequestIDs is the set of outstanding AuthnRequest IDs this SP is
// willing to correlate the response to; a response without an InResponseTo
// attribute is accepted regardless (IdP-initiated flow).
//
// On success it returns the validated attribute bundle. On failure it
// returns a *domain.SecurityError whose code classifies the rejection;
// callers should log the code server-side and show the user only a generic
// failure.
func (v *ResponseValidator) Validate(response []byte, allowedRequestIDs []string) (*domain.ValidatedAttributes, error) {
	attrs, err := v.validate(response, allowedRequestIDs)
	if err != nil {
		code := domain.CodeOf(err)
		v.metrics.RecordValidation(code.String())
		v.logger.Debug("rejecting SAML response",
			zap.String("code", code.String()),
			zap.Error(err))
		return nil, err
	}
	v.metrics.RecordValidation("success")
	return attrs, nil
}

func (v *ResponseValidator) validate(raw []byte, allowedRequestIDs []string) (*domain.ValidatedAttributes, error) {
	allowed := make(map[string]struct{}, len(allowedRequestIDs))
	for _, id := range allowedRequestIDs {
		allowed[id] = struct{}{}
	}

	root, err := v.parseRoot(raw)
	if err != nil {
		return nil, err
	}

	// An unsigned response shifts the trust requirement onto the assertion:
	// at least one of the two must always carry a verified signature.
	responseSigned := false
	if hasSignature(root) {
		validated, err := v.verifier.Verify(root)
		if err != nil {
			return nil, err
		}
		root = validated
		responseSigned = true
	}

	var resp domain.Response
	if err := unmarshalElement(root, &resp); err != nil {
		return nil, domain.RejectionCause(domain.ErrCodeMalformed, err,
			"cannot convert element into a Response object")
	}

	if resp.InResponseTo != "" {
		if _, ok := allowed[resp.InResponseTo]; !ok {
			// A user might have used a stale URL, or the IdP populates
			// InResponseTo incorrectly.
			return nil, domain.Rejection(domain.ErrCodeUnsolicited,
				"response is in-response-to %q but expected one of %v",
				resp.InResponseTo, allowedRequestIDs)
		}
	}

	if resp.Status == nil || resp.Status.StatusCode == nil {
		return nil, domain.Rejection(domain.ErrCodeStatusFailure, "response has no status code")
	}
	if !resp.Status.IsSuccess() {
		return nil, domain.Rejection(domain.ErrCodeStatusFailure,
			"response is not a 'success' response: code=%q message=%q detail=%q",
			resp.Status.StatusCode.Value, resp.Status.Message(), resp.Status.Detail())
	}

	if err := v.checkIssuer(resp.Issuer, "Response"); err != nil {
		return nil, err
	}
	if err := v.checkDestination(&resp, responseSigned); err != nil {
		return nil, err
	}

	assertion, attrs, err := v.extractDetails(root, &resp, allowed, !responseSigned)
	if err != nil {
		return nil, err
	}

	var nameID *domain.NameID
	if assertion.Subject != nil {
		nameID = assertion.Subject.NameID
	}
	if nameID == nil && len(attrs) == 0 {
		// Nothing downstream could authenticate on; usually an IdP
		// attribute-release misconfiguration.
		return nil, domain.Rejection(domain.ErrCodeEmptyResult,
			"response contained no NameID and no attributes")
	}

	return &domain.ValidatedAttributes{
		NameID:       nameID,
		SessionIndex: assertion.SessionIndex(),
		Attributes:   attrs,
	}, nil
}

// parseRoot hardens and parses the raw payload and confirms it is a
// samlp:Response document.
func (v *ResponseValidator) parseRoot(raw []byte) (*etree.Element, error) {
	// Reject documents that exploit weaknesses in Go's encoding/xml
	// round-tripping before anything else looks at them.
	if err := rtvalidator.Validate(bytes.NewReader(raw)); err != nil {
		return nil, domain.RejectionCause(domain.ErrCodeMalformed, err,
			"response XML failed round-trip validation")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil || doc.Root() == nil {
		return nil, domain.RejectionCause(domain.ErrCodeMalformed, err,
			"cannot parse response XML")
	}
	root := doc.Root()
	if root.Tag != "Response" || root.NamespaceURI() != domain.ProtocolNamespace {
		return nil, domain.Rejection(domain.ErrCodeMalformed,
			"content should have a root element of namespace=%q tag=%q, got %q",
			domain.ProtocolNamespace, "Response", root.FullTag())
	}
	return root, nil
}

func (v *ResponseValidator) checkIssuer(issuer *domain.Issuer, context string) error {
	if issuer == nil {
		return domain.Rejection(domain.ErrCodeIssuerMismatch, "%s has no Issuer", context)
	}
	if _, ok := v.issuers[issuer.Value]; !ok {
		return domain.Rejection(domain.ErrCodeIssuerMismatch,
			"%s issuer %q is not a trusted issuer", context, issuer.Value)
	}
	return nil
}

// checkDestination enforces the destination only when it is authenticated
// (response signed) or explicitly declared. An unsigned response with no
// destination skips the check: nothing trustworthy to compare, and rejecting
// it would break IdP-initiated SSO. That defense-in-depth gap is a known
// tradeoff, kept deliberately.
func (v *ResponseValidator) checkDestination(resp *domain.Response, signed bool) error {
	if resp.Destination == v.sp.ACSURL {
		return nil
	}
	if signed || resp.Destination != "" {
		return domain.Rejection(domain.ErrCodeDestinationMismatch,
			"response %s is for destination %q but this SP uses %q",
			resp.ID, resp.Destination, v.sp.ACSURL)
	}
	return nil
}

// extractDetails enforces the single-assertion rule and returns the one
// validated assertion with its flattened attributes. Supporting a single
// assertion per response is a deliberate restriction of this core, not a
// SAML mandate.
func (v *ResponseValidator) extractDetails(root *etree.Element, resp *domain.Response, allowed map[string]struct{}, requireSigned bool) (*domain.Assertion, []domain.ValidatedAttribute, error) {
	count := len(resp.Assertions) + len(resp.EncryptedAssertions)
	if count > 1 {
		return nil, nil, domain.Rejection(domain.ErrCodeMultipleAssertions,
			"expecting only 1 assertion, but response contains %d", count)
	}

	if len(resp.Assertions) == 1 {
		el, err := v.detachedAssertion(root)
		if err != nil {
			return nil, nil, err
		}
		return v.processAssertion(el, requireSigned, allowed)
	}

	if len(resp.EncryptedAssertions) == 1 {
		el, err := v.decryptAssertion(root)
		if err != nil {
			return nil, nil, err
		}
		return v.processAssertion(el, requireSigned, allowed)
	}

	return nil, nil, domain.Rejection(domain.ErrCodeNoAssertions, "no assertions found in response")
}

// detachedAssertion locates the assertion element and detaches it into its
// own context, carrying inherited namespace declarations along, so that its
// signature can be verified independently of the response document. Only
// direct children of the response qualify, matching the cardinality check in
// extractDetails; an Assertion nested deeper, say inside StatusDetail, is
// not a response assertion.
func (v *ResponseValidator) detachedAssertion(root *etree.Element) (*etree.Element, error) {
	var detached *etree.Element
	err := etreeutils.NSFindIterate(root, domain.AssertionNamespace, "Assertion",
		func(ctx etreeutils.NSContext, el *etree.Element) error {
			if el.Parent() != root {
				return nil
			}
			d, err := etreeutils.NSDetatch(ctx, el)
			if err != nil {
				return err
			}
			detached = d
			return etreeutils.ErrTraversalHalted
		})
	if err != nil && err != etreeutils.ErrTraversalHalted {
		return nil, domain.RejectionCause(domain.ErrCodeMalformed, err, "cannot isolate assertion element")
	}
	if detached == nil {
		return nil, domain.Rejection(domain.ErrCodeMalformed, "assertion element not found")
	}
	return detached, nil
}

// decryptAssertion decrypts the response's EncryptedAssertion. Failure here
// is fatal, unlike per-attribute decryption.
func (v *ResponseValidator) decryptAssertion(root *etree.Element) (*etree.Element, error) {
	encEl := findChild(root, domain.AssertionNamespace, "EncryptedAssertion")
	if encEl == nil {
		return nil, domain.Rejection(domain.ErrCodeMalformed, "EncryptedAssertion element not found")
	}
	dataEl := findChild(encEl, domain.EncryptionNamespace, "EncryptedData")
	if dataEl == nil {
		return nil, domain.Rejection(domain.ErrCodeMalformed, "EncryptedAssertion has no EncryptedData")
	}
	if v.decryptor == nil {
		return nil, domain.Rejection(domain.ErrCodeDecryptionFailed,
			"assertion [%s] is encrypted, but no decryption key is available", truncated(encEl, 32))
	}

	// The decryptor re-anchors the plaintext as the root of a fresh document
	// so ID-based references inside it resolve on their own.
	plain, err := v.decryptor.Decrypt(dataEl)
	v.metrics.RecordAssertionDecryption(err == nil)
	if err != nil {
		v.logger.Debug("failed to decrypt assertion",
			zap.String("encrypted", truncated(encEl, 512)),
			zap.Error(err))
		return nil, domain.RejectionCause(domain.ErrCodeDecryptionFailed, err,
			"failed to decrypt assertion [%s]", truncated(encEl, 32))
	}
	return plain, nil
}

// processAssertion runs the per-assertion checks in order: signature
// requirement, conditions, issuer, subject, then attribute flattening.
func (v *ResponseValidator) processAssertion(el *etree.Element, requireSigned bool, allowed map[string]struct{}) (*domain.Assertion, []domain.ValidatedAttribute, error) {
	// Do not further process unsigned content past this point.
	if hasSignature(el) {
		validated, err := v.verifier.Verify(el)
		if err != nil {
			return nil, nil, err
		}
		el = validated
	} else if requireSigned {
		return nil, nil, domain.Rejection(domain.ErrCodeSignatureMissing,
			"assertion is not signed, but a signature is required")
	}

	var assertion domain.Assertion
	if err := unmarshalElement(el, &assertion); err != nil {
		return nil, nil, domain.RejectionCause(domain.ErrCodeMalformed, err,
			"cannot convert element into an Assertion object")
	}

	if err := v.checkConditions(assertion.Conditions); err != nil {
		return nil, nil, err
	}
	if err := v.checkIssuer(assertion.Issuer, "Assertion"); err != nil {
		return nil, nil, err
	}
	if err := v.checkSubject(assertion.Subject, allowed); err != nil {
		return nil, nil, err
	}

	attrs := v.flattenAttributes(el, &assertion)
	return &assertion, attrs, nil
}

func (v *ResponseValidator) checkConditions(conditions *domain.Conditions) error {
	if conditions == nil {
		// Conditions are optional; absence is permitted.
		return nil
	}
	// Restrictions are ANDed: every one of them must name this SP.
	for _, restriction := range conditions.AudienceRestrictions {
		if !restriction.Matches(v.sp.EntityID) {
			return domain.Rejection(domain.ErrCodeAudienceMismatch,
				"conditions do not match required audience %q", v.sp.EntityID)
		}
	}
	return domain.CheckLifetime(v.clock.Now(), v.skew, conditions.NotBefore, conditions.NotOnOrAfter)
}

func (v *ResponseValidator) checkSubject(subject *domain.Subject, allowed map[string]struct{}) error {
	if subject == nil {
		return domain.Rejection(domain.ErrCodeSubjectInvalid, "assertion has no Subject")
	}

	var confirmations []*domain.SubjectConfirmationData
	for _, sc := range subject.SubjectConfirmations {
		if sc.Method == domain.MethodBearer && sc.SubjectConfirmationData != nil {
			confirmations = append(confirmations, sc.SubjectConfirmationData)
		}
	}
	// Ambiguous confirmation is untrustworthy; never "pick first".
	if len(confirmations) != 1 {
		return domain.Rejection(domain.ErrCodeSubjectInvalid,
			"subject contains %d bearer SubjectConfirmations, while exactly one was expected",
			len(confirmations))
	}
	data := confirmations[0]

	if data.Recipient != v.sp.ACSURL {
		return domain.Rejection(domain.ErrCodeSubjectInvalid,
			"SubjectConfirmationData recipient %q does not match expected value %q",
			data.Recipient, v.sp.ACSURL)
	}
	if err := domain.CheckNotOnOrAfter(v.clock.Now(), v.skew, data.NotOnOrAfter); err != nil {
		return err
	}
	// InResponseTo MUST be absent for IdP-initiated SSO; when present it is
	// checked independently of the response-level attribute.
	if data.InResponseTo != "" {
		if _, ok := allowed[data.InResponseTo]; !ok {
			return domain.Rejection(domain.ErrCodeUnsolicited,
				"SubjectConfirmationData is in-response-to %q which is not an outstanding request",
				data.InResponseTo)
		}
	}
	return nil
}

// flattenAttributes collects the assertion's attributes across all
// statements. Plaintext attributes are taken verbatim; encrypted attributes
// are decrypted individually, and a failure there drops that one attribute
// rather than failing the whole validation, since the core identity may
// still be usable without it.
func (v *ResponseValidator) flattenAttributes(el *etree.Element, assertion *domain.Assertion) []domain.ValidatedAttribute {
	var attrs []domain.ValidatedAttribute
	for _, statement := range assertion.AttributeStatements {
		for _, attr := range statement.Attributes {
			attrs = append(attrs, domain.NewValidatedAttribute(attr))
		}
	}

	for _, encEl := range findDescendants(el, domain.AssertionNamespace, "EncryptedAttribute") {
		attr, ok := v.decryptAttribute(encEl)
		if ok {
			attrs = append(attrs, domain.NewValidatedAttribute(*attr))
		}
	}
	return attrs
}

// decryptAttribute attempts to decrypt one EncryptedAttribute. Unlike
// assertion decryption this is non-fatal: the attribute is dropped and
// processing continues. Do not fold the two paths together; their failure
// policies differ on purpose.
func (v *ResponseValidator) decryptAttribute(encEl *etree.Element) (*domain.Attribute, bool) {
	if v.decryptor == nil {
		v.logger.Info("response has an encrypted attribute, but no decryption key is configured",
			zap.String("encrypted", truncated(encEl, 32)))
		return nil, false
	}
	dataEl := findChild(encEl, domain.EncryptionNamespace, "EncryptedData")
	if dataEl == nil {
		v.logger.Info("EncryptedAttribute has no EncryptedData, dropping it")
		return nil, false
	}

	plain, err := v.decryptor.Decrypt(dataEl)
	v.metrics.RecordAttributeDecryption(err == nil)
	if err != nil {
		v.logger.Info("failed to decrypt attribute, dropping it",
			zap.String("encrypted", truncated(encEl, 32)),
			zap.Error(err))
		return nil, false
	}

	var attr domain.Attribute
	if err := unmarshalElement(plain, &attr); err != nil {
		v.logger.Info("decrypted attribute is not a valid Attribute element, dropping it",
			zap.Error(err))
		return nil, false
	}
	return &attr, true
}

// hasSignature reports whether el carries a direct ds:Signature child.
func hasSignature(el *etree.Element) bool {
	return findChild(el, domain.SignatureNamespace, "Signature") != nil
}

// findChild returns the first direct child with the given namespace URI and
// local tag, regardless of the prefix the document uses.
func findChild(el *etree.Element, ns, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag && child.NamespaceURI() == ns {
			return child
		}
	}
	return nil
}

// findDescendants returns all descendants of el (in document order) with
// the given namespace URI and local tag.
func findDescendants(el *etree.Element, ns, tag string) []*etree.Element {
	var found []*etree.Element
	var walk func(*etree.Element)
	walk = func(cur *etree.Element) {
		for _, child := range cur.ChildElements() {
			if child.Tag == tag && child.NamespaceURI() == ns {
				found = append(found, child)
				continue
			}
			walk(child)
		}
	}
	walk(el)
	return found
}

// unmarshalElement serializes el and decodes it into out. The element is
// copied first so it stays attached to its original document.
func unmarshalElement(el *etree.Element, out any) error {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	data, err := doc.WriteToBytes()
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, out)
}

// truncated returns a whitespace-collapsed serialization of el capped at
// limit bytes, for log context without leaking full plaintext. The cut lands
// on a rune boundary so log fields stay valid UTF-8.
func truncated(el *etree.Element, limit int) string {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	collapsed := strings.Join(strings.Fields(s), " ")
	if len(collapsed) > limit {
		for limit > 0 && !utf8.RuneStart(collapsed[limit]) {
			limit--
		}
		return collapsed[:limit] + "..."
	}
	return collapsed
}
