package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"plemiona/internal/battle/domain"
)

const defaultCollectionName = "battle_report"

// ReportDoc is the after-action record archived once a battle finishes.
type ReportDoc struct {
	BattleID  string `bson:"_id"`
	SessionID string `bson:"session_id"`

	AttackerPlayerID  string `bson:"attacker_player_id"`
	DefenderPlayerID  string `bson:"defender_player_id"`
	AttackerVillageID string `bson:"attacker_village_id"`
	DefenderVillageID string `bson:"defender_village_id"`

	CommittedUnits    map[string]int `bson:"committed_units"`
	DefenderRoster    map[string]int `bson:"defender_roster"`
	AttackerSurvivors map[string]int `bson:"attacker_survivors"`
	DefenderSurvivors map[string]int `bson:"defender_survivors"`

	DispatchedAt time.Time  `bson:"dispatched_at"`
	BattleTime   time.Time  `bson:"battle_time"`
	ReturnTime   *time.Time `bson:"return_time,omitempty"`

	AttackerWon        bool    `bson:"attacker_won"`
	PlunderWood        float64 `bson:"plunder_wood"`
	PlunderClay        float64 `bson:"plunder_clay"`
	PlunderIron        float64 `bson:"plunder_iron"`
	AttackerMoraleLoss float64 `bson:"attacker_morale_loss"`
	DefenderMoraleLoss float64 `bson:"defender_morale_loss"`
}

type ReportRepository struct {
	coll *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		coll: db.Collection(defaultCollectionName),
	}
}

func (r *ReportRepository) Archive(ctx context.Context, b *domain.Battle) error {
	if b == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errors.New("mongodb battle report collection is nil")
	}

	doc := toDoc(b)
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.BattleID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func toDoc(b *domain.Battle) ReportDoc {
	doc := ReportDoc{
		BattleID:           b.ID,
		SessionID:          b.SessionID,
		AttackerPlayerID:   b.AttackerPlayerID,
		DefenderPlayerID:   b.DefenderPlayerID,
		AttackerVillageID:  string(b.AttackerVillageID),
		DefenderVillageID:  string(b.DefenderVillageID),
		CommittedUnits:     toStringKeys(b.CommittedUnits),
		DefenderRoster:     toStringKeys(b.DefenderRoster),
		AttackerSurvivors:  toStringKeys(b.AttackerSurvivors),
		DefenderSurvivors:  toStringKeys(b.DefenderSurvivors),
		DispatchedAt:       b.DispatchedAt,
		BattleTime:         b.BattleTime,
		AttackerWon:        b.AttackerWon,
		PlunderWood:        b.Plunder.Wood,
		PlunderClay:        b.Plunder.Clay,
		PlunderIron:        b.Plunder.Iron,
		AttackerMoraleLoss: b.AttackerMoraleLoss,
		DefenderMoraleLoss: b.DefenderMoraleLoss,
	}
	if b.ReturnTime != nil {
		t := *b.ReturnTime
		doc.ReturnTime = &t
	}
	return doc
}

func toStringKeys[K ~string](in map[K]int) map[string]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
