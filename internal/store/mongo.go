package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
)

// MongoStore is the production Store backed by MongoDB.
type MongoStore struct {
	buyRequests *mongo.Collection
	listings    *mongo.Collection
	rooms       *mongo.Collection
	messages    *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		buyRequests: db.Collection("buy_requests"),
		listings:    db.Collection("listings"),
		rooms:       db.Collection("negotiation_rooms"),
		messages:    db.Collection("negotiation_messages"),
	}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.buyRequests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer_agent_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller_agent_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	// One room per listing.
	_, err = s.rooms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "listing_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

func (s *MongoStore) SaveBuyRequest(ctx context.Context, br model.BuyRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.buyRequests.InsertOne(ctx, br)
	return err
}

func (s *MongoStore) GetBuyRequest(ctx context.Context, id string) (model.BuyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var br model.BuyRequest
	err := s.buyRequests.FindOne(ctx, bson.M{"_id": id}).Decode(&br)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.BuyRequest{}, ErrBuyRequestNotFound
		}
		return model.BuyRequest{}, err
	}
	return br, nil
}

func (s *MongoStore) ListBuyRequests(ctx context.Context, buyerAgentID string, limit int) ([]model.BuyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if buyerAgentID != "" {
		filter["buyer_agent_id"] = buyerAgentID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.buyRequests.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.BuyRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateSearchProgress(ctx context.Context, id string, progress model.SearchProgress, status model.BuyRequestStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"search":     progress,
		"updated_at": time.Now().UTC(),
	}
	if status != "" {
		set["status"] = status
	}

	res, err := s.buyRequests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBuyRequestNotFound
	}
	return nil
}

func (s *MongoStore) SaveListing(ctx context.Context, l model.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.listings.InsertOne(ctx, l)
	return err
}

func (s *MongoStore) GetListing(ctx context.Context, id string) (model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var l model.Listing
	err := s.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, err
	}
	return l, nil
}

func (s *MongoStore) ListOpenListings(ctx context.Context) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.listings.Find(ctx, bson.M{"status": model.ListingOpen}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Listing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateListingStatus(ctx context.Context, id string, status model.ListingStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.listings.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (s *MongoStore) SaveRoom(ctx context.Context, room model.NegotiationRoom) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.rooms.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return ErrRoomExists
	}
	return err
}

func (s *MongoStore) GetRoom(ctx context.Context, id string) (model.NegotiationRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var room model.NegotiationRoom
	err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.NegotiationRoom{}, ErrRoomNotFound
		}
		return model.NegotiationRoom{}, err
	}
	return room, nil
}

func (s *MongoStore) GetRoomByListing(ctx context.Context, listingID string) (model.NegotiationRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var room model.NegotiationRoom
	err := s.rooms.FindOne(ctx, bson.M{"listing_id": listingID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.NegotiationRoom{}, ErrRoomNotFound
		}
		return model.NegotiationRoom{}, err
	}
	return room, nil
}

// ClaimRoom is a compare-and-swap: the filter requires a WAITING room with no
// buyer, so exactly one of any concurrent claimants succeeds.
func (s *MongoStore) ClaimRoom(ctx context.Context, roomID string, claim RoomClaim) (model.NegotiationRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":            roomID,
		"status":         model.RoomWaiting,
		"buyer_agent_id": bson.M{"$in": bson.A{nil, ""}},
	}
	set := bson.M{
		"buyer_agent_id": claim.BuyerAgentID,
		"buyer_endpoint": claim.BuyerEndpoint,
		"status":         model.RoomActive,
		"updated_at":     time.Now().UTC(),
	}
	if claim.SellerEndpoint != "" {
		set["seller_endpoint"] = claim.SellerEndpoint
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var room model.NegotiationRoom
	err := s.rooms.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish a missing room from a lost race.
			if _, getErr := s.GetRoom(ctx, roomID); errors.Is(getErr, ErrRoomNotFound) {
				return model.NegotiationRoom{}, ErrRoomNotFound
			}
			return model.NegotiationRoom{}, ErrRoomClaimed
		}
		return model.NegotiationRoom{}, err
	}
	return room, nil
}

func (s *MongoStore) CloseRoom(ctx context.Context, roomID string, status model.RoomStatus, agreedPrice *float64) (model.NegotiationRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":    roomID,
		"status": bson.M{"$in": bson.A{model.RoomWaiting, model.RoomActive}},
	}
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if agreedPrice != nil {
		set["agreed_price"] = *agreedPrice
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var room model.NegotiationRoom
	err := s.rooms.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := s.GetRoom(ctx, roomID); errors.Is(getErr, ErrRoomNotFound) {
				return model.NegotiationRoom{}, ErrRoomNotFound
			}
			return model.NegotiationRoom{}, ErrRoomTerminal
		}
		return model.NegotiationRoom{}, err
	}
	return room, nil
}

func (s *MongoStore) AppendMessage(ctx context.Context, msg model.NegotiationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.messages.InsertOne(ctx, msg)
	return err
}

func (s *MongoStore) ListMessages(ctx context.Context, roomID string) ([]model.NegotiationMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.NegotiationMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	// The mongo client is owned by main.
	return nil
}
