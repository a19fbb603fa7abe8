package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

var (
	bucketUsers          = []byte("users")
	bucketNetworks       = []byte("networks")
	bucketLogs           = []byte("system_logs")
	bucketUsersByEmail   = []byte("idx_users_by_email")
	bucketNetworksByChan = []byte("idx_networks_by_chain_id")
	bucketMeta           = []byte("meta")
)

const boltSchemaVersion = 1

// userRecord persists the password hash, which models.User hides from JSON.
type userRecord struct {
	models.User
	Password string `json:"password"`
}

// BoltRepository implements the Repository interface on an embedded bbolt
// file. Documents are JSON; unique keys live in index buckets.
type BoltRepository struct {
	db *bbolt.DB
}

func NewBoltRepository(db *bbolt.DB) (*BoltRepository, error) {
	r := &BoltRepository{db: db}
	if err := r.initialize(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *BoltRepository) initialize() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketUsers, bucketNetworks, bucketLogs, bucketUsersByEmail, bucketNetworksByChan, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		version, _ := json.Marshal(boltSchemaVersion)
		return tx.Bucket(bucketMeta).Put([]byte("schema_version"), version)
	})
}

func (r *BoltRepository) Ping(_ context.Context) error {
	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketMeta) == nil {
			return fmt.Errorf("bolt: meta bucket missing")
		}
		return nil
	})
}

func (r *BoltRepository) Close() error {
	return r.db.Close()
}

func emailKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

func getJSON(b *bbolt.Bucket, id string, dest interface{}) error {
	data := b.Get([]byte(id))
	if data == nil {
		return ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func putJSON(b *bbolt.Bucket, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(id), data)
}

// User repository methods
func (r *BoltRepository) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	return r.db.Update(func(tx *bbolt.Tx) error {
		idx := tx.Bucket(bucketUsersByEmail)
		if idx.Get(emailKey(user.Email)) != nil {
			return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
		}
		if err := putJSON(tx.Bucket(bucketUsers), user.ID, userRecord{User: *user, Password: user.Password}); err != nil {
			return err
		}
		return idx.Put(emailKey(user.Email), []byte(user.ID))
	})
}

func (r *BoltRepository) GetUser(_ context.Context, id string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func loadUser(tx *bbolt.Tx, id string) (*models.User, error) {
	var rec userRecord
	if err := getJSON(tx.Bucket(bucketUsers), id, &rec); err != nil {
		return nil, err
	}
	u := rec.User
	u.Password = rec.Password
	return &u, nil
}

func (r *BoltRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketUsersByEmail).Get(emailKey(email))
		if id == nil {
			return ErrNotFound
		}
		var err error
		user, err = loadUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *BoltRepository) ListUsers(_ context.Context, f UserFilter) ([]models.User, error) {
	users := []models.User{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(_, v []byte) error {
			var rec userRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if f.matches(&rec.User) {
				users = append(users, rec.User)
			}
			return nil
		})
	})
	sortUsers(users)
	return users, err
}

func (r *BoltRepository) UpdateUser(_ context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.db.Update(func(tx *bbolt.Tx) error {
		existing, err := loadUser(tx, user.ID)
		if err != nil {
			return err
		}
		idx := tx.Bucket(bucketUsersByEmail)
		oldKey, newKey := emailKey(existing.Email), emailKey(user.Email)
		if string(oldKey) != string(newKey) {
			if idx.Get(newKey) != nil {
				return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
			}
			if err := idx.Delete(oldKey); err != nil {
				return err
			}
			if err := idx.Put(newKey, []byte(user.ID)); err != nil {
				return err
			}
		}
		return putJSON(tx.Bucket(bucketUsers), user.ID, userRecord{User: *user, Password: user.Password})
	})
}

func (r *BoltRepository) DeleteUser(_ context.Context, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		existing, err := loadUser(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsersByEmail).Delete(emailKey(existing.Email)); err != nil {
			return err
		}
		return tx.Bucket(bucketUsers).Delete([]byte(id))
	})
}

func (r *BoltRepository) CountUsers(_ context.Context) (int64, error) {
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketUsers).Stats().KeyN
		return nil
	})
	return int64(n), err
}

// Network repository methods
func (r *BoltRepository) CreateNetwork(_ context.Context, network *models.Network) error {
	if network.ID == "" {
		network.ID = uuid.New().String()
	}
	if network.CreatedAt.IsZero() {
		network.CreatedAt = time.Now().UTC()
	}
	network.UpdatedAt = network.CreatedAt

	return r.db.Update(func(tx *bbolt.Tx) error {
		idx := tx.Bucket(bucketNetworksByChan)
		if idx.Get([]byte(network.ChainID)) != nil {
			return fmt.Errorf("%w: chain id %s", ErrDuplicate, network.ChainID)
		}
		if err := putJSON(tx.Bucket(bucketNetworks), network.ID, network); err != nil {
			return err
		}
		return idx.Put([]byte(network.ChainID), []byte(network.ID))
	})
}

func (r *BoltRepository) GetNetwork(_ context.Context, id string) (*models.Network, error) {
	var n models.Network
	err := r.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(bucketNetworks), id, &n)
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *BoltRepository) ListNetworks(_ context.Context, f NetworkFilter) ([]models.Network, error) {
	networks := []models.Network{}
	err := r.eachNetwork(func(n *models.Network) {
		if f.matches(n) {
			networks = append(networks, *n)
		}
	})
	sortNetworks(networks)
	return page(networks, 0, f.Limit), err
}

func (r *BoltRepository) eachNetwork(fn func(n *models.Network)) error {
	return r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNetworks).ForEach(func(_, v []byte) error {
			var n models.Network
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			fn(&n)
			return nil
		})
	})
}

func (r *BoltRepository) UpdateNetwork(_ context.Context, network *models.Network) error {
	network.UpdatedAt = time.Now().UTC()
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNetworks)
		var existing models.Network
		if err := getJSON(b, network.ID, &existing); err != nil {
			return err
		}
		idx := tx.Bucket(bucketNetworksByChan)
		if existing.ChainID != network.ChainID {
			if idx.Get([]byte(network.ChainID)) != nil {
				return fmt.Errorf("%w: chain id %s", ErrDuplicate, network.ChainID)
			}
			if err := idx.Delete([]byte(existing.ChainID)); err != nil {
				return err
			}
			if err := idx.Put([]byte(network.ChainID), []byte(network.ID)); err != nil {
				return err
			}
		}
		return putJSON(b, network.ID, network)
	})
}

func (r *BoltRepository) DeleteNetwork(_ context.Context, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNetworks)
		var existing models.Network
		if err := getJSON(b, id, &existing); err != nil {
			return err
		}
		if err := tx.Bucket(bucketNetworksByChan).Delete([]byte(existing.ChainID)); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

func (r *BoltRepository) CountNetworks(_ context.Context, f NetworkFilter) (int64, error) {
	var n int64
	err := r.eachNetwork(func(nw *models.Network) {
		if f.matches(nw) {
			n++
		}
	})
	return n, err
}

func (r *BoltRepository) CountNetworksBy(_ context.Context, field NetworkField) (map[string]int64, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}
	counts := map[string]int64{}
	err := r.eachNetwork(func(n *models.Network) {
		if field == ByStatus {
			counts[string(n.Status)]++
		} else {
			counts[string(n.DeploymentType)]++
		}
	})
	return counts, err
}

func (r *BoltRepository) ValidatorTotal(_ context.Context) (int64, error) {
	var total int64
	err := r.eachNetwork(func(n *models.Network) {
		total += int64(len(n.Validators))
	})
	return total, err
}

// System log repository methods
func (r *BoltRepository) CreateLog(_ context.Context, log *models.SystemLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	if log.Actions == nil {
		log.Actions = []models.LogAction{}
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(bucketLogs), log.ID, log)
	})
}

func (r *BoltRepository) GetLog(_ context.Context, id string) (*models.SystemLog, error) {
	var l models.SystemLog
	err := r.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(bucketLogs), id, &l)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *BoltRepository) matchingLogs(f LogFilter) ([]models.SystemLog, error) {
	logs := []models.SystemLog{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLogs).ForEach(func(_, v []byte) error {
			var l models.SystemLog
			if err := json.Unmarshal(v, &l); err != nil {
				return err
			}
			if f.matches(&l) {
				logs = append(logs, l)
			}
			return nil
		})
	})
	return logs, err
}

func (r *BoltRepository) ListLogs(_ context.Context, f LogFilter) ([]models.SystemLog, error) {
	logs, err := r.matchingLogs(f)
	if err != nil {
		return nil, err
	}
	sortLogs(logs)
	return page(logs, f.Skip, f.Limit), nil
}

func (r *BoltRepository) UpdateLog(_ context.Context, log *models.SystemLog) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLogs)
		if b.Get([]byte(log.ID)) == nil {
			return ErrNotFound
		}
		return putJSON(b, log.ID, log)
	})
}

func (r *BoltRepository) CountLogs(_ context.Context, f LogFilter) (int64, error) {
	logs, err := r.matchingLogs(LogFilter{
		Level: f.Level, Source: f.Source, Resolved: f.Resolved,
		UserID: f.UserID, NetworkID: f.NetworkID, Since: f.Since,
	})
	return int64(len(logs)), err
}

func (r *BoltRepository) CountLogsByLevel(_ context.Context, resolved *bool) (map[string]int64, error) {
	logs, err := r.matchingLogs(LogFilter{Resolved: resolved})
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, l := range logs {
		counts[string(l.Level)]++
	}
	return counts, nil
}
