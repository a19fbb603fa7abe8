package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

const (
	collUsers    = "users"
	collNetworks = "networks"
	collLogs     = "system_logs"
)

// MongoRepository implements the Repository interface on MongoDB. Models
// are stored as documents through their bson tags.
type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepository(client *mongo.Client, db *mongo.Database) *MongoRepository {
	return &MongoRepository{client: client, db: db}
}

// EnsureIndexes creates the unique and sort indexes. It is safe to call on
// every start.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{collUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{collNetworks, mongo.IndexModel{Keys: bson.D{{Key: "chainId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{collNetworks, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{collLogs, mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: -1}}}},
		{collLogs, mongo.IndexModel{Keys: bson.D{{Key: "level", Value: 1}, {Key: "resolved", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := r.db.Collection(idx.coll).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll, err)
		}
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func (r *MongoRepository) findOne(ctx context.Context, coll string, filter bson.M, dest interface{}) error {
	return mongoErr(r.db.Collection(coll).FindOne(ctx, filter).Decode(dest))
}

func (r *MongoRepository) replace(ctx context.Context, coll, id string, doc interface{}) error {
	res, err := r.db.Collection(coll).ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) deleteOne(ctx context.Context, coll, id string) error {
	res, err := r.db.Collection(coll).DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func newestFirst(field string, skip, limit int) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(bson.D{{Key: field, Value: -1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// User repository methods
func (r *MongoRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	_, err := r.db.Collection(collUsers).InsertOne(ctx, user)
	return mongoErr(err)
}

func (r *MongoRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.findOne(ctx, collUsers, byID(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.findOne(ctx, collUsers, bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func userQuery(f UserFilter) bson.M {
	q := bson.M{}
	if f.Role != "" {
		q["role"] = f.Role
	}
	if f.Active != nil {
		q["isActive"] = *f.Active
	}
	if f.Search != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		q["$or"] = bson.A{bson.M{"name": re}, bson.M{"email": re}, bson.M{"company": re}}
	}
	return q
}

func (r *MongoRepository) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	cur, err := r.db.Collection(collUsers).Find(ctx, userQuery(f), newestFirst("createdAt", 0, 0))
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.replace(ctx, collUsers, user.ID, user)
}

func (r *MongoRepository) DeleteUser(ctx context.Context, id string) error {
	return r.deleteOne(ctx, collUsers, id)
}

func (r *MongoRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.db.Collection(collUsers).CountDocuments(ctx, bson.D{})
}

// Network repository methods
func normalizeNetwork(n *models.Network) {
	if n.Validators == nil {
		n.Validators = []models.Validator{}
	}
	if n.Modules == nil {
		n.Modules = []models.Module{}
	}
}

func (r *MongoRepository) CreateNetwork(ctx context.Context, network *models.Network) error {
	if network.ID == "" {
		network.ID = uuid.New().String()
	}
	if network.CreatedAt.IsZero() {
		network.CreatedAt = time.Now().UTC()
	}
	network.UpdatedAt = network.CreatedAt
	normalizeNetwork(network)
	_, err := r.db.Collection(collNetworks).InsertOne(ctx, network)
	return mongoErr(err)
}

func (r *MongoRepository) GetNetwork(ctx context.Context, id string) (*models.Network, error) {
	var n models.Network
	if err := r.findOne(ctx, collNetworks, byID(id), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func networkQuery(f NetworkFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.DeploymentType != "" {
		q["deploymentType"] = f.DeploymentType
	}
	if f.Owner != "" {
		q["owner"] = f.Owner
	}
	if f.CreatedSince != nil {
		q["createdAt"] = bson.M{"$gte": *f.CreatedSince}
	}
	return q
}

func (r *MongoRepository) ListNetworks(ctx context.Context, f NetworkFilter) ([]models.Network, error) {
	cur, err := r.db.Collection(collNetworks).Find(ctx, networkQuery(f), newestFirst("createdAt", 0, f.Limit))
	if err != nil {
		return nil, err
	}
	networks := []models.Network{}
	if err := cur.All(ctx, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

func (r *MongoRepository) UpdateNetwork(ctx context.Context, network *models.Network) error {
	network.UpdatedAt = time.Now().UTC()
	normalizeNetwork(network)
	return r.replace(ctx, collNetworks, network.ID, network)
}

func (r *MongoRepository) DeleteNetwork(ctx context.Context, id string) error {
	return r.deleteOne(ctx, collNetworks, id)
}

func (r *MongoRepository) CountNetworks(ctx context.Context, f NetworkFilter) (int64, error) {
	return r.db.Collection(collNetworks).CountDocuments(ctx, networkQuery(f))
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *MongoRepository) groupCounts(ctx context.Context, coll string, match bson.M, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []groupCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *MongoRepository) CountNetworksBy(ctx context.Context, field NetworkField) (map[string]int64, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}
	return r.groupCounts(ctx, collNetworks, bson.M{}, string(field))
}

func (r *MongoRepository) ValidatorTotal(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "n", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$validators", bson.A{}}}}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$n"}}},
		}}},
	}
	cur, err := r.db.Collection(collNetworks).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// System log repository methods
func (r *MongoRepository) CreateLog(ctx context.Context, log *models.SystemLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	if log.Actions == nil {
		log.Actions = []models.LogAction{}
	}
	_, err := r.db.Collection(collLogs).InsertOne(ctx, log)
	return mongoErr(err)
}

func (r *MongoRepository) GetLog(ctx context.Context, id string) (*models.SystemLog, error) {
	var l models.SystemLog
	if err := r.findOne(ctx, collLogs, byID(id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func logQuery(f LogFilter) bson.M {
	q := bson.M{}
	if f.Level != "" {
		q["level"] = f.Level
	}
	if f.Source != "" {
		q["source"] = f.Source
	}
	if f.Resolved != nil {
		q["resolved"] = *f.Resolved
	}
	if f.UserID != "" {
		q["userId"] = f.UserID
	}
	if f.NetworkID != "" {
		q["networkId"] = f.NetworkID
	}
	if f.Since != nil {
		q["timestamp"] = bson.M{"$gte": *f.Since}
	}
	return q
}

func (r *MongoRepository) ListLogs(ctx context.Context, f LogFilter) ([]models.SystemLog, error) {
	cur, err := r.db.Collection(collLogs).Find(ctx, logQuery(f), newestFirst("timestamp", f.Skip, f.Limit))
	if err != nil {
		return nil, err
	}
	logs := []models.SystemLog{}
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *MongoRepository) UpdateLog(ctx context.Context, log *models.SystemLog) error {
	return r.replace(ctx, collLogs, log.ID, log)
}

func (r *MongoRepository) CountLogs(ctx context.Context, f LogFilter) (int64, error) {
	return r.db.Collection(collLogs).CountDocuments(ctx, logQuery(f))
}

func (r *MongoRepository) CountLogsByLevel(ctx context.Context, resolved *bool) (map[string]int64, error) {
	return r.groupCounts(ctx, collLogs, logQuery(LogFilter{Resolved: resolved}), "level")
}
