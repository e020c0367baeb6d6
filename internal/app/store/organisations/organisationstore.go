// internal/app/store/organisations/organisationstore.go
package organisationstore

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/system/paging"
	"github.com/dalemusser/orgdesk/internal/app/system/validators"
	"github.com/dalemusser/orgdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "organisations"

var (
	ErrDuplicateOrganisation = errors.New("an organisation with this contact email already exists")
	ErrInvalidOrganisation   = errors.New("organisation failed validation")
	ErrNotificationNotFound  = errors.New("no notification with that timestamp")
	ErrAlreadyAccepted       = errors.New("notification has already been accepted")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection)}
}

// NormalizeEmail is the form contact emails are stored and matched in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create assigns the ID, folded name and timestamps and inserts org. The
// unique contact.email index turns a concurrent duplicate into
// ErrDuplicateOrganisation.
func (s *Store) Create(ctx context.Context, org models.Organisation) (models.Organisation, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	org.Contact.Email = NormalizeEmail(org.Contact.Email)
	if org.Notifications == nil {
		org.Notifications = []models.Notification{}
	}
	if org.Requests == nil {
		org.Requests = []primitive.ObjectID{}
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, org); err != nil {
		switch {
		case wafflemongo.IsDup(err):
			return models.Organisation{}, ErrDuplicateOrganisation
		case validators.IsValidationError(err):
			return models.Organisation{}, ErrInvalidOrganisation
		}
		return models.Organisation{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organisation, error) {
	var org models.Organisation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return models.Organisation{}, err
	}
	return org, nil
}

// GetByIDs loads organisations in the order of ids. IDs with no document
// are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organisation, error) {
	if len(ids) == 0 {
		return []models.Organisation{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var found []models.Organisation
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Organisation, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}

	orgs := make([]models.Organisation, 0, len(found))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			orgs = append(orgs, o)
		}
	}
	return orgs, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Organisation, error) {
	var org models.Organisation
	if err := s.c.FindOne(ctx, bson.M{"contact.email": NormalizeEmail(email)}).Decode(&org); err != nil {
		return models.Organisation{}, err
	}
	return org, nil
}

// ExistsByEmail reports whether an organisation uses email as its contact.
// It is a courtesy pre-check; the unique index is what enforces uniqueness.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"contact.email": NormalizeEmail(email)},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Patch lists the fields an organisation update may change. Nil fields are
// left alone.
type Patch struct {
	Name      *string
	Employees *int64
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Employees == nil
}

// Fields names the document fields p sets.
func (p Patch) Fields() []string {
	var out []string
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.Employees != nil {
		out = append(out, "employees")
	}
	return out
}

// Update applies p and returns the organisation as it is after the update.
// Server-side validators run on the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Organisation, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
		set["name_ci"] = text.Fold(*p.Name)
	}
	if p.Employees != nil {
		set["employees"] = *p.Employees
	}

	var org models.Organisation
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&org)
	if err != nil {
		if validators.IsValidationError(err) {
			return models.Organisation{}, ErrInvalidOrganisation
		}
		return models.Organisation{}, err
	}
	return org, nil
}

// Delete removes an organisation by ID. Returns the number of documents deleted (0 or 1).
// Sessions and requests that reference it are left as they are.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// NearestOfType returns every organisation of type typ that has a location,
// with its Euclidean distance from ref, nearest first. Ties are broken by
// _id so the order is stable.
func (s *Store) NearestOfType(ctx context.Context, ref models.Location, typ string) ([]models.OrganisationDistance, error) {
	sq := func(field string, origin float64) bson.M {
		return bson.M{"$pow": bson.A{bson.M{"$subtract": bson.A{field, origin}}, 2}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"type":          typ,
			"location.long": bson.M{"$type": "number"},
			"location.lat":  bson.M{"$type": "number"},
		}}},
		{{Key: "$project", Value: bson.M{
			"name":     1,
			"type":     1,
			"location": 1,
			"distance": bson.M{"$sqrt": bson.M{"$add": bson.A{
				sq("$location.long", ref.Long),
				sq("$location.lat", ref.Lat),
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "distance", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.OrganisationDistance{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Requests returns the organisation's requests, resolved from the requests
// collection in the order the organisation lists them. A missing
// organisation is mongo.ErrNoDocuments.
func (s *Store) Requests(ctx context.Context, id primitive.ObjectID) ([]models.Request, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "requests",
			"localField":   "requests",
			"foreignField": "_id",
			"as":           "resolved",
		}}},
		{{Key: "$project", Value: bson.M{"requests": 1, "resolved": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Requests []primitive.ObjectID `bson:"requests"`
		Resolved []models.Request     `bson:"resolved"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, mongo.ErrNoDocuments
	}

	// $lookup does not preserve localField order.
	byID := make(map[primitive.ObjectID]models.Request, len(rows[0].Resolved))
	for _, r := range rows[0].Resolved {
		byID[r.ID] = r
	}
	out := make([]models.Request, 0, len(rows[0].Resolved))
	for _, rid := range rows[0].Requests {
		if r, ok := byID[rid]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// AddRequest links a request to the organisation and queues its pending
// notification. A missing organisation is mongo.ErrNoDocuments.
func (s *Store) AddRequest(ctx context.Context, id, requestID primitive.ObjectID, n models.Notification) error {
	n.At = n.At.UTC().Truncate(time.Millisecond)
	n.Status = false
	n.RequestID = &requestID

	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"requests": requestID, "notifications": n},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AcceptNotification flips the status of the notification stamped at from
// false to true in a single conditional update, so it can only happen once.
// It returns the notification as accepted.
//
// Errors: mongo.ErrNoDocuments (no organisation), ErrNotificationNotFound,
// ErrAlreadyAccepted.
func (s *Store) AcceptNotification(ctx context.Context, id primitive.ObjectID, at time.Time) (models.Notification, error) {
	at = at.UTC().Truncate(time.Millisecond)

	var org models.Organisation
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"_id": id,
			"notifications": bson.M{"$elemMatch": bson.M{
				"at":     at,
				"status": bson.M{"$ne": true},
			}},
		},
		bson.M{"$set": bson.M{
			"notifications.$.status": true,
			"updated_at":             time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&org)

	if err == nil {
		// The positional operator flipped the first pending notification
		// stamped at; in the pre-update document that is the first match.
		for _, n := range org.Notifications {
			if n.At.Equal(at) && !n.Status {
				n.Status = true
				return n, nil
			}
		}
		return models.Notification{}, ErrNotificationNotFound
	}
	if err != mongo.ErrNoDocuments {
		return models.Notification{}, err
	}

	// Nothing pending matched; work out why.
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Notification{}, err
	}
	for _, n := range current.Notifications {
		if n.At.Equal(at) {
			return models.Notification{}, ErrAlreadyAccepted
		}
	}
	return models.Notification{}, ErrNotificationNotFound
}

// Count returns the number of organisations matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// ListFilter narrows the directory listing. Query is a case-insensitive
// name prefix.
type ListFilter struct {
	Query string
	Type  string
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if fq := text.Fold(f.Query); fq != "" {
		q["name_ci"] = bson.M{"$gte": fq, "$lt": fq + "\uffff"}
	}
	return q
}

// List returns one keyset page of organisations ordered by name_ci, _id.
// Password hashes and notifications are not loaded.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.Organisation, paging.Page, error) {
	base := f.query()
	total, err := s.c.CountDocuments(ctx, base)
	if err != nil {
		return nil, paging.Page{}, err
	}

	const sortField = "name_ci"
	cfg := paging.ConfigureKeyset(p.Before, p.After)
	find := options.Find().SetProjection(bson.M{"password_hash": 0, "notifications": 0})
	cfg.ApplyToFind(find, sortField)

	filter := maps.Clone(base)
	if ks := cfg.KeysetWindow(sortField); ks != nil {
		if nameCond, ok := filter[sortField]; ok {
			delete(filter, sortField)
			filter["$and"] = []bson.M{{sortField: nameCond}, ks}
		} else {
			maps.Copy(filter, ks)
		}
	}

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Page{}, err
	}
	defer cur.Close(ctx)

	orgs := []models.Organisation{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, paging.Page{}, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(orgs)
	}
	res := paging.TrimPage(&orgs, p.Before, p.After)
	prev, next := paging.BuildCursors(orgs,
		func(o models.Organisation) string { return o.NameCI },
		func(o models.Organisation) primitive.ObjectID { return o.ID })

	return orgs, paging.Page{
		Total:      total,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
		Range:      paging.ComputeRange(p.Start, len(orgs)),
	}, nil
}
