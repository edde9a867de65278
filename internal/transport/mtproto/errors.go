package mtproto

import (
	"github.com/gotd/td/tgerr"
	"github.com/samber/oops"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

// RPC error types the network answers lookups and joins with
const (
	errUsernameInvalid     = "USERNAME_INVALID"
	errUsernameNotOccupied = "USERNAME_NOT_OCCUPIED"
	errChannelPrivate      = "CHANNEL_PRIVATE"
	errChannelInvalid      = "CHANNEL_INVALID"
	errChannelPublicNA     = "CHANNEL_PUBLIC_GROUP_NA"
	errInviteHashExpired   = "INVITE_HASH_EXPIRED"
	errInviteHashInvalid   = "INVITE_HASH_INVALID"
	errInviteHashEmpty     = "INVITE_HASH_EMPTY"
	errInviteRequestSent   = "INVITE_REQUEST_SENT"
	errAlreadyParticipant  = "USER_ALREADY_PARTICIPANT"
)

// wrap turns a flood signal into *domain.FloodWaitError and annotates anything else
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &domain.FloodWaitError{Wait: wait}
	}
	return oops.In("mtproto").With("op", op).Wrapf(err, "%s", op)
}

// rpcType returns the RPC error type carried by err
func rpcType(err error) (string, bool) {
	rpcErr, ok := tgerr.As(err)
	if !ok {
		return "", false
	}
	return rpcErr.Type, true
}

// resolveOutcome classifies a failed lookup. ok is false for errors worth retrying.
func resolveOutcome(err error) (domain.ResolveOutcome, string, bool) {
	typ, ok := rpcType(err)
	if !ok {
		return "", "", false
	}
	switch typ {
	case errUsernameInvalid, errInviteHashInvalid, errInviteHashEmpty, errChannelInvalid:
		return domain.ResolveOutcomeInvalid, typ, true
	case errUsernameNotOccupied, errInviteHashExpired:
		return domain.ResolveOutcomeNotFound, typ, true
	case errChannelPrivate:
		return domain.ResolveOutcomePrivate, typ, true
	}
	return "", "", false
}

// joinOutcome classifies a failed join. ok is false for errors worth retrying.
func joinOutcome(err error) (domain.JoinOutcome, string, bool) {
	typ, ok := rpcType(err)
	if !ok {
		return "", "", false
	}
	switch typ {
	case errAlreadyParticipant:
		return domain.JoinOutcomeAlreadyMember, "", true
	case errInviteRequestSent:
		return domain.JoinOutcomeRequestSent, "", true
	case errChannelPrivate:
		return domain.JoinOutcomePrivate, typ, true
	case errChannelInvalid, errInviteHashInvalid, errInviteHashEmpty, errUsernameInvalid:
		return domain.JoinOutcomeInvalid, typ, true
	case errInviteHashExpired, errUsernameNotOccupied:
		return domain.JoinOutcomeNotFound, typ, true
	}
	return "", "", false
}

// fetchFault reports a history read that will not succeed until the channel changes
func fetchFault(err error) error {
	typ, ok := rpcType(err)
	if !ok {
		return nil
	}
	switch typ {
	case errChannelPrivate, errChannelInvalid, errChannelPublicNA:
		return &domain.ChannelFaultError{Reason: typ}
	}
	return nil
}
