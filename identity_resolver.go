package jwtcookie

import (
	"context"
	"reflect"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// AttributeNormalizer adjusts a claim value before it is compared against and
// written to a user attribute, e.g. phone number canonicalization.
type AttributeNormalizer func(value any) (any, error)

// IdentityResolver turns decoded claims into a persisted user record. It
// gets-or-creates the record by the username claim and merges the configured
// claim attributes into it, writing at most once per resolution.
type IdentityResolver struct {
	users       Users
	repos       RepositoryManager
	cfg         Config
	logger      Logger
	Validator   func(*User) error
	normalizers map[string]AttributeNormalizer
	useHashid   bool
}

var _ IdentityStore = (*IdentityResolver)(nil)

// NewIdentityResolver creates a resolver backed by the given users repository.
func NewIdentityResolver(users Users, cfg Config) *IdentityResolver {
	return &IdentityResolver{
		users:     users,
		cfg:       cfg,
		logger:    defLogger{},
		Validator: defaultUserValidator,
		normalizers: map[string]AttributeNormalizer{
			"phone": NormalizePhone(""),
		},
	}
}

// NewIdentityResolverWithManager creates a resolver backed by a repository
// manager. Each resolution then runs get-or-create and the merge write inside
// a single transaction, so concurrent first-time logins for one username
// observe a consistent record.
func NewIdentityResolverWithManager(repos RepositoryManager, cfg Config) *IdentityResolver {
	r := NewIdentityResolver(repos.Users(), cfg)
	r.repos = repos
	return r
}

func (r *IdentityResolver) WithLogger(logger Logger) *IdentityResolver {
	r.logger = logger
	return r
}

// WithNormalizer registers a normalizer for a target attribute, replacing any
// default for that attribute.
func (r *IdentityResolver) WithNormalizer(attribute string, fn AttributeNormalizer) *IdentityResolver {
	if r.normalizers == nil {
		r.normalizers = map[string]AttributeNormalizer{}
	}
	r.normalizers[attribute] = fn
	return r
}

// WithDeterministicIDs derives first-time record IDs from the username rather
// than generating random UUIDs, so independent services provision the same ID
// for the same subject.
func (r *IdentityResolver) WithDeterministicIDs(enabled bool) *IdentityResolver {
	r.useHashid = enabled
	return r
}

// Resolve looks up or creates the user for the claims' username and merges
// the configured claim attributes into the record. One persistence write
// happens iff any attribute changed. When the resolver was built from a
// RepositoryManager the whole resolution runs in one transaction.
func (r *IdentityResolver) Resolve(ctx context.Context, claims Claims) (*User, error) {
	if r.repos != nil {
		var user *User
		err := r.repos.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			var err error
			user, err = r.resolve(ctx, tx, claims)
			return err
		})
		if err != nil {
			return nil, err
		}
		return user, nil
	}

	return r.resolve(ctx, nil, claims)
}

func (r *IdentityResolver) resolve(ctx context.Context, tx bun.IDB, claims Claims) (*User, error) {
	username, ok := claims.Username()
	if !ok {
		return nil, ErrMissingUsernameClaim
	}

	seed := &User{Username: username}
	if r.useHashid {
		if id, err := hashid.NewUUID(username); err == nil {
			seed.ID = id
		}
	}

	var (
		user    *User
		created bool
		err     error
	)

	if tx != nil {
		user, created, err = r.users.GetOrCreateByUsernameTx(ctx, tx, seed)
	} else {
		user, created, err = r.users.GetOrCreateByUsername(ctx, seed)
	}
	if err != nil {
		r.logger.Error("user retrieval failed", "username", username, "error", err)
		return nil, errors.Wrap(err, ErrIdentityStore.Category, ErrIdentityStore.Message).
			WithTextCode(ErrIdentityStore.TextCode).
			WithMetadata(map[string]any{
				"username": username,
			})
	}

	if created {
		r.logger.Info("created user record for first-time authentication", "username", username, "user_id", user.ID)
	}

	changed := r.mergeClaims(user, claims)

	if r.Validator != nil {
		if err := r.Validator(user); err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "user record failed validation after claim merge").
				WithTextCode(ErrIdentityStore.TextCode)
		}
	}

	if changed {
		if tx != nil {
			err = r.users.SaveTx(ctx, tx, user)
		} else {
			err = r.users.Save(ctx, user)
		}
		if err != nil {
			r.logger.Error("user update failed", "username", username, "user_id", user.ID, "error", err)
			return nil, errors.Wrap(err, ErrIdentityStore.Category, ErrIdentityStore.Message).
				WithTextCode(ErrIdentityStore.TextCode).
				WithMetadata(map[string]any{
					"username": username,
				})
		}
	}

	return user, nil
}

// mergeClaims applies the claim to attribute mapping onto the record and
// reports whether anything changed. Claims are processed in sorted order so
// repeated resolutions log and apply identically.
func (r *IdentityResolver) mergeClaims(user *User, claims Claims) bool {
	attributeMap := r.cfg.GetClaimAttributeMap()
	if len(attributeMap) == 0 {
		return false
	}

	mergeable := map[string]bool{}
	for _, attr := range r.cfg.GetMergeableAttributes() {
		mergeable[attr] = true
	}

	claimNames := make([]string, 0, len(attributeMap))
	for claim := range attributeMap {
		claimNames = append(claimNames, claim)
	}
	sort.Strings(claimNames)

	changed := false
	for _, claim := range claimNames {
		attr := attributeMap[claim]
		if mergeable[attr] {
			if r.mergeDictAttribute(user, claims, claim, attr) {
				changed = true
			}
			continue
		}
		if r.overwriteScalarAttribute(user, claims, claim, attr) {
			changed = true
		}
	}

	return changed
}

// mergeDictAttribute merges a dictionary-valued claim additively: empty or
// absent claims never touch the stored value, keys are added or updated one
// at a time, and nothing is ever removed.
func (r *IdentityResolver) mergeDictAttribute(user *User, claims Claims, claim, attr string) bool {
	if claims.IsZero(claim) {
		return false
	}

	payload, ok := claims.GetDict(claim)
	if !ok {
		r.logger.Warn("mergeable claim is not a dictionary, skipping", "claim", claim, "attribute", attr)
		return false
	}

	current, _ := user.Attribute(attr)
	currentDict, hasDict := asDict(current)
	if !hasDict || len(currentDict) == 0 {
		r.logger.Info("updating attribute %s for user %s", attr, user.ID)
		if err := user.SetAttribute(attr, payload); err != nil {
			r.logger.Warn("unable to set attribute", "attribute", attr, "error", err)
			return false
		}
		return true
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changed := false
	for _, key := range keys {
		value := payload[key]
		existing, exists := currentDict[key]
		if !exists {
			r.logger.Info("adding attribute %s[%s] for user %s", attr, key, user.ID)
			currentDict[key] = value
			changed = true
			continue
		}
		if !reflect.DeepEqual(existing, value) {
			r.logger.Info("updating attribute %s[%s] for user %s", attr, key, user.ID)
			currentDict[key] = value
			changed = true
		}
	}

	if changed {
		if err := user.SetAttribute(attr, currentDict); err != nil {
			r.logger.Warn("unable to set attribute", "attribute", attr, "error", err)
			return false
		}
	}

	return changed
}

// overwriteScalarAttribute applies last-claim-wins semantics: a present claim
// overwrites a differing stored value. Present means the claim exists with a
// non-nil value; false and empty string are valid overwrites, absence is not.
func (r *IdentityResolver) overwriteScalarAttribute(user *User, claims Claims, claim, attr string) bool {
	value, ok := claims.Get(claim)
	if !ok {
		return false
	}

	if normalize, has := r.normalizers[attr]; has {
		normalized, err := normalize(value)
		if err != nil {
			r.logger.Warn("claim normalization failed, skipping attribute", "claim", claim, "attribute", attr, "error", err)
			return false
		}
		value = normalized
	}

	current, _ := user.Attribute(attr)
	if reflect.DeepEqual(current, value) {
		return false
	}

	r.logger.Info("updating attribute %s for user %s", attr, user.ID)
	if err := user.SetAttribute(attr, value); err != nil {
		r.logger.Warn("unable to set attribute", "attribute", attr, "error", err)
		return false
	}

	return true
}

func asDict(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func defaultUserValidator(user *User) error {
	return validation.ValidateStruct(user,
		validation.Field(&user.Username, validation.Required),
		validation.Field(&user.Email, is.Email),
	)
}
