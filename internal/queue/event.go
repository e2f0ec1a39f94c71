// Package queue defines message payloads exchanged over the message broker.
package queue

// Audit event kinds published to the forum.audit queue.
const (
	KindPostDeleted    = "post.deleted"
	KindInviteRedeemed = "invite.redeemed"
)

// AuditEvent records a privileged action for the append-only audit trail:
// a moderator deleting a post, or an invite being consumed by a
// registration. It carries enough information for downstream consumers to
// log or trigger analytics without querying the primary database.
type AuditEvent struct {
	Kind       string `json:"kind"`
	ActorID    uint64 `json:"actor_id"`
	ActorName  string `json:"actor_name,omitempty"`
	PostID     uint64 `json:"post_id,omitempty"`
	InviteRole string `json:"invite_role,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
