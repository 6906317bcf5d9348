package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

const invitesCollection = "invites"

// InviteRepository implements the invite store over MongoDB. Status
// transitions go through a single conditional update so concurrent
// redemptions of the same token cannot both succeed.
type InviteRepository struct {
	coll *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	return &InviteRepository{coll: db.Collection(invitesCollection)}
}

type mongoInvite struct {
	ID          string     `bson:"_id"`
	Email       string     `bson:"email"`
	FirstName   string     `bson:"first_name"`
	LastName    string     `bson:"last_name"`
	Role        string     `bson:"role"`
	Token       string     `bson:"token"`
	Specialties []string   `bson:"specialties,omitempty"`
	Status      string     `bson:"status"`
	ExpiresAt   time.Time  `bson:"expires_at"`
	CreatedBy   string     `bson:"created_by"`
	CreatedAt   time.Time  `bson:"created_at"`
	AcceptedAt  *time.Time `bson:"accepted_at,omitempty"`
}

func (r *InviteRepository) Insert(ctx context.Context, invite *domain.Invite) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoInvite{
		ID:          invite.ID,
		Email:       invite.Email,
		FirstName:   invite.FirstName,
		LastName:    invite.LastName,
		Role:        invite.Role,
		Token:       invite.Token,
		Specialties: invite.Specialties,
		Status:      string(invite.Status),
		ExpiresAt:   invite.ExpiresAt.UTC(),
		CreatedBy:   invite.CreatedBy,
		CreatedAt:   invite.CreatedAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateInvite
		}
		return wrapStoreError("insert invite", err)
	}
	return nil
}

func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*domain.Invite, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *InviteRepository) FindByID(ctx context.Context, id string) (*domain.Invite, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *InviteRepository) FindPendingByEmail(ctx context.Context, email string) (*domain.Invite, error) {
	return r.findOne(ctx, bson.M{"email": email, "status": string(domain.InvitePending)})
}

func (r *InviteRepository) findOne(ctx context.Context, filter bson.M) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mi mongoInvite
	if err := r.coll.FindOne(ctx, filter).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, wrapStoreError("find invite", err)
	}
	return mi.toDomain(), nil
}

// UpdateStatus transitions an invite's status only when the stored status
// still equals expected. An existing document whose status has moved on
// yields domain.ErrInviteAlreadyUsed; a missing id yields
// domain.ErrInviteNotFound. This is the atomic check-and-set the lifecycle
// depends on for exactly-once redemption.
func (r *InviteRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.InviteStatus, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(next)}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(expected)},
		bson.M{"$set": set},
	)
	if err != nil {
		return wrapStoreError("update invite status", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a vanished invite from a lost race.
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return wrapStoreError("update invite status", err)
		}
		if n == 0 {
			return domain.ErrInviteNotFound
		}
		return domain.ErrInviteAlreadyUsed
	}
	return nil
}

func (r *InviteRepository) ListByStatus(ctx context.Context, status domain.InviteStatus) ([]domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrapStoreError("list invites", err)
	}
	defer cur.Close(ctx)

	var invites []domain.Invite
	for cur.Next(ctx) {
		var mi mongoInvite
		if err := cur.Decode(&mi); err != nil {
			return nil, wrapStoreError("decode invite", err)
		}
		invites = append(invites, *mi.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, wrapStoreError("list invites", err)
	}
	return invites, nil
}

// EnsureIndexes creates the token lookup index and the partial unique index
// that backs the one-pending-invite-per-email policy at the storage level.
func (r *InviteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.InvitePending)}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (mi *mongoInvite) toDomain() *domain.Invite {
	return &domain.Invite{
		ID:          mi.ID,
		Email:       mi.Email,
		FirstName:   mi.FirstName,
		LastName:    mi.LastName,
		Role:        mi.Role,
		Token:       mi.Token,
		Specialties: mi.Specialties,
		Status:      domain.InviteStatus(mi.Status),
		ExpiresAt:   mi.ExpiresAt,
		CreatedBy:   mi.CreatedBy,
		CreatedAt:   mi.CreatedAt,
		AcceptedAt:  mi.AcceptedAt,
	}
}
