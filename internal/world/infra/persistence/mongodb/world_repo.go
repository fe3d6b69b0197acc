package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/infra/persistence/model"
)

const (
	worldCollectionName = "world"
	gridCollectionName  = "world_grid"
)

// WorldStore 把每个世界存成一条文档，所有写入都是带字段守卫的 UpdateOne：
// 守卫不满足时 MatchedCount 为 0，返回 port.ErrConflict。
type WorldStore struct {
	coll  *mongo.Collection
	grids *mongo.Collection
}

func NewWorldStore(db *mongo.Database) *WorldStore {
	return &WorldStore{
		coll:  db.Collection(worldCollectionName),
		grids: db.Collection(gridCollectionName),
	}
}

// docCollection 是 CreateWorld 用到的集合操作，*mongo.Collection 直接满足。
type docCollection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
}

func (r *WorldStore) CreateWorld(ctx context.Context, w *entity.World) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb world collection is nil")
	}
	return createWorld(ctx, r.grids, r.coll, w)
}

// createWorld 先写网格再写世界文档，世界文档是"已存在"的唯一依据：
// 世界文档写失败时删掉刚写的网格；遇到没有世界文档的残留网格直接覆盖。
func createWorld(ctx context.Context, grids, worlds docCollection, w *entity.World) error {
	id := string(w.ID)
	grid := model.GridDoc{
		ID:        id,
		Size:      w.Size,
		Tiles:     model.EncodeTiles(w.Tiles),
		Provinces: model.EncodeProvinces(w.Provinces),
	}
	if _, err := grids.InsertOne(ctx, grid); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
		n, err := worlds.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n > 0 {
			return port.ErrAlreadyExists
		}
		if _, err := grids.ReplaceOne(ctx, bson.M{"_id": id}, grid); err != nil {
			return err
		}
	}
	if _, err := worlds.InsertOne(ctx, model.WorldToDoc(w)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// 并发创建同一 id，赢家的网格可能已被覆盖，不能删
			return port.ErrAlreadyExists
		}
		if _, derr := grids.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": id}); derr != nil {
			return fmt.Errorf("insert world %s: %w (cleanup grids: %v)", id, err, derr)
		}
		return err
	}
	return nil
}

func (r *WorldStore) LoadGrids(ctx context.Context, id entity.WorldID) (*entity.Grid, *entity.ProvinceGrid, error) {
	var doc model.GridDoc
	err := r.grids.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, port.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	tiles, err := model.DecodeTiles(doc.Size, doc.Tiles)
	if err != nil {
		return nil, nil, err
	}
	provs, err := model.DecodeProvinces(doc.Size, doc.Provinces)
	if err != nil {
		return nil, nil, err
	}
	return tiles, provs, nil
}

func (r *WorldStore) LoadState(ctx context.Context, id entity.WorldID) (*entity.World, error) {
	var doc model.WorldDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.DocToWorld(doc), nil
}

func (r *WorldStore) ApplyClaim(ctx context.Context, id entity.WorldID, u port.ClaimUpdate) error {
	cell := "ownership." + u.Cell.Key()
	filter := bson.M{"_id": string(id)}
	filter["ownership."+u.Via.Key()] = string(u.Attacker.ID)
	if u.ExpectedOwner == "" {
		filter[cell] = bson.M{"$exists": false}
	} else {
		filter[cell] = string(u.ExpectedOwner)
	}
	set := bson.M{cell: string(u.Attacker.ID)}
	inc := bson.M{}
	guardDelta(filter, set, inc, u.Attacker, u.Tile)
	if u.Defender != nil {
		guardDelta(filter, set, inc, *u.Defender, u.Tile)
	}
	update := bson.M{"$set": set}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	return r.updateOne(ctx, filter, update)
}

// guardDelta 把攻/守一方的兵力守卫与写回拼进 filter/update。
func guardDelta(filter, set, inc bson.M, d port.KingdomDelta, tile entity.Tile) {
	troopsGuard(filter, d.ID, d.Before)
	set[kingdomField(d.ID, "troops")] = d.After
	set[kingdomField(d.ID, "power")] = d.Power
	if d.TileDelta != 0 {
		inc[kingdomField(d.ID, "tiles."+model.TileKey(tile))] = d.TileDelta
	}
}

func (r *WorldStore) ReserveSpawn(ctx context.Context, id entity.WorldID, u port.SpawnUpdate) error {
	filter := bson.M{"_id": string(id)}
	filter[kingdomField(u.Kingdom.ID, "")] = bson.M{"$exists": false}
	if u.MaxKingdoms > 0 {
		filter["kingdom_count"] = bson.M{"$lt": u.MaxKingdoms}
	}
	set := bson.M{kingdomField(u.Kingdom.ID, ""): model.KingdomToDoc(u.Kingdom)}
	for _, c := range u.Cells {
		filter["ownership."+c.Key()] = bson.M{"$exists": false}
		set["ownership."+c.Key()] = string(u.Kingdom.ID)
	}
	return r.updateOne(ctx, filter, bson.M{
		"$set": set,
		"$inc": bson.M{"kingdom_count": 1},
	})
}

func (r *WorldStore) EnqueueOrder(ctx context.Context, id entity.WorldID, u port.OrderUpdate) error {
	k := u.Kingdom
	filter := bson.M{"_id": string(id)}
	resourceGuard(filter, k, u.Cost)
	if u.ExpectedQueueEnd.IsZero() {
		filter[kingdomField(k, "queue.0")] = bson.M{"$exists": false}
	} else {
		filter[kingdomField(k, "queue_end")] = u.ExpectedQueueEnd
		filter[kingdomField(k, "queue.0")] = bson.M{"$exists": true}
	}
	return r.updateOne(ctx, filter, bson.M{
		"$inc":  resourceInc(k, u.Cost, -1),
		"$push": bson.M{kingdomField(k, "queue"): u.Order},
		"$set":  bson.M{kingdomField(k, "queue_end"): u.Order.EndAt},
	})
}

func (r *WorldStore) CompleteOrders(ctx context.Context, id entity.WorldID, u port.CompletionUpdate) error {
	k := u.Kingdom
	filter := bson.M{"_id": string(id)}
	filter[kingdomField(k, "queue.id")] = bson.M{"$all": u.OrderIDs}
	troopsGuard(filter, k, u.Before)
	return r.updateOne(ctx, filter, bson.M{
		"$pull": bson.M{kingdomField(k, "queue"): bson.M{"id": bson.M{"$in": u.OrderIDs}}},
		"$set": bson.M{
			kingdomField(k, "troops"): u.After,
			kingdomField(k, "power"):  u.Power,
		},
	})
}

func (r *WorldStore) CreditProduction(ctx context.Context, id entity.WorldID, u port.ProductionUpdate) error {
	k := u.Kingdom
	filter := bson.M{"_id": string(id)}
	if u.From >= u.Tick {
		return port.ErrConflict
	}
	filter[kingdomField(k, "produced_tick")] = u.From
	return r.updateOne(ctx, filter, bson.M{
		"$inc": resourceInc(k, u.Gain, 1),
		"$set": bson.M{kingdomField(k, "produced_tick"): u.Tick},
	})
}

func (r *WorldStore) UnlockProvinces(ctx context.Context, id entity.WorldID, u port.UnlockUpdate) error {
	filter := bson.M{"_id": string(id)}
	set := bson.M{}
	for _, pid := range u.Provinces {
		field := "provinces." + model.ProvinceKey(pid) + ".unlocked"
		filter[field] = false
		set[field] = true
	}
	for _, g := range u.Gates {
		set[fmt.Sprintf("provinces.%s.gates.%d.open", model.ProvinceKey(g.Province), g.Index)] = true
	}
	update := bson.M{"$max": bson.M{"day": u.Day}}
	if len(set) > 0 {
		update["$set"] = set
	}
	return r.updateOne(ctx, filter, update)
}

func (r *WorldStore) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return port.ErrConflict
	}
	return nil
}

// kingdomField 拼出 kingdoms.<id>.<path>，path 为空时指向王国本身。
func kingdomField(id entity.KingdomID, path string) string {
	if path == "" {
		return "kingdoms." + string(id)
	}
	return "kingdoms." + string(id) + "." + path
}

func troopsGuard(filter bson.M, k entity.KingdomID, t entity.Troops) {
	filter[kingdomField(k, "troops.infantry")] = t.Infantry
	filter[kingdomField(k, "troops.archer")] = t.Archer
	filter[kingdomField(k, "troops.cavalry")] = t.Cavalry
	filter[kingdomField(k, "troops.siege")] = t.Siege
}

func resourceGuard(filter bson.M, k entity.KingdomID, cost entity.Resources) {
	filter[kingdomField(k, "resources.food")] = bson.M{"$gte": cost.Food}
	filter[kingdomField(k, "resources.wood")] = bson.M{"$gte": cost.Wood}
	filter[kingdomField(k, "resources.stone")] = bson.M{"$gte": cost.Stone}
	filter[kingdomField(k, "resources.gold")] = bson.M{"$gte": cost.Gold}
}

func resourceInc(k entity.KingdomID, r entity.Resources, sign int64) bson.M {
	return bson.M{
		kingdomField(k, "resources.food"):  sign * r.Food,
		kingdomField(k, "resources.wood"):  sign * r.Wood,
		kingdomField(k, "resources.stone"): sign * r.Stone,
		kingdomField(k, "resources.gold"):  sign * r.Gold,
	}
}

var _ port.WorldStore = (*WorldStore)(nil)
