package authz

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

// Oracle answers "may principal P perform action A in channel C" from the
// membership table and resource ownership. Denials are explicit Forbidden
// errors; nothing is silently filtered.
type Oracle struct {
	db database.Database
}

// NewOracle creates an authorization oracle backed by the store
func NewOracle(db database.Database) *Oracle {
	return &Oracle{db: db}
}

// MemberRole returns the user's role in the channel, or Forbidden when the
// user is not a member.
func (o *Oracle) MemberRole(ctx context.Context, channelID uint, userID string) (string, error) {
	member, err := o.db.GetMember(ctx, channelID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errorx.ErrForbidden.WithMessage("not a channel member")
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// RequireMember allows any channel member
func (o *Oracle) RequireMember(ctx context.Context, channelID uint, userID string) error {
	_, err := o.MemberRole(ctx, channelID, userID)
	return err
}

// RequireManager allows owners and managers
func (o *Oracle) RequireManager(ctx context.Context, channelID uint, userID string) error {
	role, err := o.MemberRole(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if role != cnst.RoleOwner && role != cnst.RoleManager {
		return errorx.ErrForbidden.WithMessage("requires owner or manager role")
	}
	return nil
}

// RequireOwner allows the channel owner only
func (o *Oracle) RequireOwner(ctx context.Context, channelID uint, userID string) error {
	role, err := o.MemberRole(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if role != cnst.RoleOwner {
		return errorx.ErrForbidden.WithMessage("requires owner role")
	}
	return nil
}

// RequireCreator allows only the principal who created the resource. The
// caller must still have channel membership checked separately when needed.
func (o *Oracle) RequireCreator(userID, createdBy string) error {
	if userID != createdBy {
		return errorx.ErrForbidden.WithMessage("only the creator may modify this")
	}
	return nil
}

// CanManageTopic allows channel owners, managers, and the topic's creator
// to manage topic membership.
func (o *Oracle) CanManageTopic(ctx context.Context, channelID uint, userID, topicCreatedBy string) error {
	if userID == topicCreatedBy {
		return o.RequireMember(ctx, channelID, userID)
	}
	return o.RequireManager(ctx, channelID, userID)
}
