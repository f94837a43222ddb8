package channel

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

// inviteCharset avoids ambiguous characters (0/O, 1/I) in generated codes
const inviteCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Service manages channels, memberships and invite codes.
type Service struct {
	db     database.Database
	oracle *authz.Oracle
	logger *zap.Logger
}

// NewService creates a channel service
func NewService(db database.Database, oracle *authz.Oracle, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, logger: logger.Named("core.channel")}
}

// CreateInput holds the fields settable at channel creation
type CreateInput struct {
	Name      string
	Address   string
	Latitude  *float64
	Longitude *float64
	WifiSSID  string
	AuthMode  string
}

// Create creates a channel owned by the caller. The owner membership is
// written in the same transaction.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*database.Channel, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errorx.ErrValidation.WithMessage("channel name is required")
	}
	authMode := in.AuthMode
	if authMode == "" {
		authMode = cnst.AuthModeLocation
	}
	if authMode != cnst.AuthModeLocation && authMode != cnst.AuthModeWifi {
		return nil, errorx.ErrValidation.WithMessage("invalid auth mode")
	}

	code, err := randomCode(cnst.InviteCodeLength)
	if err != nil {
		return nil, err
	}
	channel := &database.Channel{
		Name:             strings.TrimSpace(in.Name),
		OwnerID:          ownerID,
		InviteCode:       code,
		Address:          in.Address,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		WifiSSID:         in.WifiSSID,
		AuthMode:         authMode,
		SubscriptionTier: cnst.TierFree,
	}
	if err := s.db.CreateChannel(ctx, channel); err != nil {
		return nil, err
	}
	s.logger.Info("channel created",
		zap.Uint("channel_id", channel.ID),
		zap.String("owner_id", ownerID))
	return channel, nil
}

// Get returns a channel visible to the caller
func (s *Service) Get(ctx context.Context, channelID uint, userID string) (*database.Channel, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.GetChannel(ctx, channelID)
}

// List returns every channel the caller belongs to, with their role
func (s *Service) List(ctx context.Context, userID string) ([]*database.ChannelWithRole, error) {
	return s.db.ListUserChannels(ctx, userID)
}

// UpdateInput holds the channel settings editable after creation
type UpdateInput struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
	WifiSSID  *string
	AuthMode  *string
	Tier      *string
}

// Update applies channel settings. Owners and managers only.
func (s *Service) Update(ctx context.Context, channelID uint, userID string, in UpdateInput) (*database.Channel, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	channel, err := s.db.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, errorx.ErrValidation.WithMessage("channel name is required")
		}
		channel.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		channel.Address = *in.Address
	}
	if in.Latitude != nil {
		channel.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		channel.Longitude = in.Longitude
	}
	if in.WifiSSID != nil {
		channel.WifiSSID = *in.WifiSSID
	}
	if in.AuthMode != nil {
		if *in.AuthMode != cnst.AuthModeLocation && *in.AuthMode != cnst.AuthModeWifi {
			return nil, errorx.ErrValidation.WithMessage("invalid auth mode")
		}
		channel.AuthMode = *in.AuthMode
	}
	if in.Tier != nil {
		switch *in.Tier {
		case cnst.TierFree, cnst.TierStandard, cnst.TierPremium:
			channel.SubscriptionTier = *in.Tier
		default:
			return nil, errorx.ErrValidation.WithMessage("invalid subscription tier")
		}
	}
	if err := s.db.UpdateChannel(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// Delete removes the channel and everything scoped to it. Owner only.
func (s *Service) Delete(ctx context.Context, channelID uint, userID string) error {
	if err := s.oracle.RequireOwner(ctx, channelID, userID); err != nil {
		return err
	}
	if err := s.db.DeleteChannel(ctx, channelID); err != nil {
		return err
	}
	s.logger.Info("channel deleted", zap.Uint("channel_id", channelID))
	return nil
}

// Members lists the channel roster. Any member may read it.
func (s *Service) Members(ctx context.Context, channelID uint, userID string) ([]*database.ChannelMember, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListMembers(ctx, channelID)
}

// UpdateMemberRole changes a member's role. Owners and managers may demote
// or promote between staff and manager; promotion to owner goes through
// Transfer instead.
func (s *Service) UpdateMemberRole(ctx context.Context, channelID uint, actorID, targetID, role string) error {
	if role != cnst.RoleManager && role != cnst.RoleStaff {
		if role == cnst.RoleOwner {
			return errorx.ErrValidation.WithMessage("use ownership transfer to assign the owner role")
		}
		return errorx.ErrValidation.WithMessage("invalid role")
	}
	if err := s.oracle.RequireManager(ctx, channelID, actorID); err != nil {
		return err
	}
	target, err := s.db.GetMember(ctx, channelID, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.ErrNotFound.WithMessage("member not found")
	}
	if err != nil {
		return err
	}
	if target.Role == cnst.RoleOwner {
		return errorx.ErrForbidden.WithMessage("the owner role cannot be changed here")
	}
	return s.db.UpdateMemberRole(ctx, channelID, targetID, role)
}

// Kick removes a member. Owners and managers only; the owner cannot be
// kicked.
func (s *Service) Kick(ctx context.Context, channelID uint, actorID, targetID string) error {
	if err := s.oracle.RequireManager(ctx, channelID, actorID); err != nil {
		return err
	}
	target, err := s.db.GetMember(ctx, channelID, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.ErrNotFound.WithMessage("member not found")
	}
	if err != nil {
		return err
	}
	if target.Role == cnst.RoleOwner {
		return errorx.ErrForbidden.WithMessage("the owner cannot be removed")
	}
	return s.db.RemoveMember(ctx, channelID, targetID)
}

// Transfer hands ownership to another member. The previous owner becomes a
// manager in the same transaction.
func (s *Service) Transfer(ctx context.Context, channelID uint, ownerID, targetID string) error {
	if err := s.oracle.RequireOwner(ctx, channelID, ownerID); err != nil {
		return err
	}
	if ownerID == targetID {
		return errorx.ErrValidation.WithMessage("already the owner")
	}
	if _, err := s.db.GetMember(ctx, channelID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.ErrNotFound.WithMessage("target is not a channel member")
		}
		return err
	}
	if err := s.db.TransferOwnership(ctx, channelID, ownerID, targetID); err != nil {
		return err
	}
	s.logger.Info("ownership transferred",
		zap.Uint("channel_id", channelID),
		zap.String("from", ownerID),
		zap.String("to", targetID))
	return nil
}

// Leave removes the caller's own membership. The owner must transfer
// ownership first.
func (s *Service) Leave(ctx context.Context, channelID uint, userID string) error {
	role, err := s.oracle.MemberRole(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if role == cnst.RoleOwner {
		return errorx.ErrForbidden.WithMessage("the owner must transfer ownership before leaving")
	}
	return s.db.RemoveMember(ctx, channelID, userID)
}

// GenerateInvite creates a time-limited invite code. Owners and managers
// only. A zero ttl uses the default window.
func (s *Service) GenerateInvite(ctx context.Context, channelID uint, userID string, ttl time.Duration) (*database.InviteCode, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = cnst.InviteCodeTTL
	}
	code, err := randomCode(cnst.InviteCodeLength)
	if err != nil {
		return nil, err
	}
	invite := &database.InviteCode{
		Code:      code,
		ChannelID: channelID,
		CreatedBy: userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// RedeemInvite joins the caller to the invite's channel as staff. Expired
// codes surface as NotFound; joining twice is a Conflict.
func (s *Service) RedeemInvite(ctx context.Context, code, userID string) (*database.Channel, error) {
	invite, err := s.db.GetValidInvite(ctx, strings.ToUpper(strings.TrimSpace(code)), time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.ErrNotFound.WithMessage("invite code not found or expired")
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.db.GetMember(ctx, invite.ChannelID, userID); err == nil {
		return nil, errorx.ErrConflict.WithMessage("already a channel member")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := &database.ChannelMember{
		ChannelID: invite.ChannelID,
		UserID:    userID,
		Role:      cnst.RoleStaff,
	}
	if err := s.db.RedeemInvite(ctx, invite.ID, member); err != nil {
		// a concurrent redeem by the same user trips the unique
		// membership index
		return nil, errorx.ErrConflict.WithMessage("already a channel member")
	}
	return s.db.GetChannel(ctx, invite.ChannelID)
}

// ListInvites returns the channel's unexpired codes. Owners and managers
// only.
func (s *Service) ListInvites(ctx context.Context, channelID uint, userID string) ([]*database.InviteCode, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListActiveInvites(ctx, channelID, time.Now())
}

func randomCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(inviteCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = inviteCharset[n.Int64()]
	}
	return string(out), nil
}
