package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	db2 "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
	"github.com/upper/db/v4"
)

type InteractionDB struct {
	sess db.Session
}

func getInteractionDB(sess db.Session) *InteractionDB {
	return &InteractionDB{sess}
}

func (idb *InteractionDB) CreateLike(ctx context.Context, userId string, postId int64) error {
	_, err := idb.sess.SQL().
		InsertInto("post_like").
		Columns("user_id", "post_id").
		Values(userId, postId).
		ExecContext(ctx)
	if db2.IsDupKeyErr(err) {
		return db2.ErrDuplicate
	}
	return err
}

func (idb *InteractionDB) DeleteLike(ctx context.Context, userId string, postId int64) error {
	_, err := idb.sess.SQL().
		DeleteFrom("post_like").
		Where("user_id = ? AND post_id = ?", userId, postId).
		ExecContext(ctx)
	return err
}

func (idb *InteractionDB) GetLike(ctx context.Context, userId string, postId int64) (bool, error) {
	exists, err := idb.sess.WithContext(ctx).
		Collection("post_like").
		Find("user_id = ? AND post_id = ?", userId, postId).
		Exists()
	return exists, err
}

func (idb *InteractionDB) GetLikeCount(ctx context.Context, postId int64) (int, error) {
	count, err := idb.sess.WithContext(ctx).
		Collection("post_like").
		Find("post_id = ?", postId).
		Count()
	return int(count), err
}

func (idb *InteractionDB) CreateVote(ctx context.Context, userId string, postId int64, optionIndex int) error {
	_, err := idb.sess.SQL().
		InsertInto("poll_vote").
		Columns("user_id", "post_id", "option_index").
		Values(userId, postId, optionIndex).
		ExecContext(ctx)
	if db2.IsDupKeyErr(err) {
		return db2.ErrDuplicate
	}
	return err
}

func (idb *InteractionDB) GetVote(ctx context.Context, userId string, postId int64) (*model.PollVote, error) {
	var vote model.PollVote
	if err := idb.sess.SQL().
		Select("user_id", "post_id", "option_index", "created_at").
		From("poll_vote").
		Where("user_id = ? AND post_id = ?", userId, postId).
		IteratorContext(ctx).
		One(&vote); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

type tallyRow struct {
	OptionIndex int `db:"option_index"`
	Count       int `db:"count"`
}

// GetVoteTallies recomputes per-option counts from the vote rows. Votes with
// an index outside the current option list are dropped from the tally rather
// than corrupting it.
func (idb *InteractionDB) GetVoteTallies(ctx context.Context, postId int64, numOptions int) ([]int, error) {
	var rows []tallyRow
	if err := idb.sess.SQL().
		Select("option_index", db.Raw("COUNT(*) AS count")).
		From("poll_vote").
		Where("post_id = ?", postId).
		GroupBy("option_index").
		IteratorContext(ctx).
		All(&rows); err != nil {
		return nil, err
	}
	tallies := make([]int, numOptions)
	for _, row := range rows {
		if row.OptionIndex >= 0 && row.OptionIndex < numOptions {
			tallies[row.OptionIndex] = row.Count
		}
	}
	return tallies, nil
}

func (idb *InteractionDB) CreateFormResponse(ctx context.Context, response *model.FormResponse) error {
	responsesJSON, err := json.Marshal(response.Responses)
	if err != nil {
		return err
	}
	_, err = idb.sess.SQL().
		InsertInto("form_response").
		Columns("user_id", "post_id", "responses", "alias").
		Values(response.UserId, response.PostId, string(responsesJSON), response.Alias).
		ExecContext(ctx)
	if db2.IsDupKeyErr(err) {
		return db2.ErrDuplicate
	}
	return err
}

type flattenedFormResponse struct {
	UserId           string       `db:"user_id"`
	PostId           int64        `db:"post_id"`
	ResponsesJSONStr string       `db:"responses"`
	Alias            string       `db:"alias"`
	CreatedAt        sql.NullTime `db:"created_at"`
}

func (idb *InteractionDB) GetFormResponse(ctx context.Context, userId string, postId int64) (*model.FormResponse, error) {
	var flattened flattenedFormResponse
	if err := idb.sess.SQL().
		Select("user_id", "post_id", "responses", "alias", "created_at").
		From("form_response").
		Where("user_id = ? AND post_id = ?", userId, postId).
		IteratorContext(ctx).
		One(&flattened); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildFormResponseFromFlattened(&flattened)
}

func (idb *InteractionDB) GetFormResponses(ctx context.Context, postId int64) ([]*model.FormResponse, error) {
	var flattenedResponses []flattenedFormResponse
	if err := idb.sess.SQL().
		Select("user_id", "post_id", "responses", "alias", "created_at").
		From("form_response").
		Where("post_id = ?", postId).
		OrderBy("created_at").
		IteratorContext(ctx).
		All(&flattenedResponses); err != nil {
		return nil, err
	}
	responses := make([]*model.FormResponse, len(flattenedResponses))
	for i, flattened := range flattenedResponses {
		response, err := buildFormResponseFromFlattened(&flattened)
		if err != nil {
			return nil, err
		}
		responses[i] = response
	}
	return responses, nil
}

func buildFormResponseFromFlattened(flattened *flattenedFormResponse) (*model.FormResponse, error) {
	var responses map[string]string
	if err := json.Unmarshal([]byte(flattened.ResponsesJSONStr), &responses); err != nil {
		return nil, err
	}
	response := &model.FormResponse{
		UserId:    flattened.UserId,
		PostId:    flattened.PostId,
		Responses: responses,
		Alias:     flattened.Alias,
	}
	if flattened.CreatedAt.Valid {
		response.CreatedAt = flattened.CreatedAt.Time
	}
	return response, nil
}

// AddParticipant inserts under a row lock on the event so two concurrent
// joins cannot both squeeze past the capacity check.
func (idb *InteractionDB) AddParticipant(ctx context.Context, userId string, postId int64) error {
	return idb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx,
			`SELECT max_participants FROM event_post WHERE post_id = ? FOR UPDATE`, postId)
		if err != nil {
			return err
		}
		var maxParticipants sql.NullInt64
		if err := row.Scan(&maxParticipants); err != nil {
			return err
		}

		if maxParticipants.Valid {
			count, err := sess.WithContext(ctx).
				Collection("event_participant").
				Find("post_id = ?", postId).
				Count()
			if err != nil {
				return err
			}
			if count >= uint64(maxParticipants.Int64) {
				return db2.ErrEventFull
			}
		}

		_, err = sess.SQL().
			InsertInto("event_participant").
			Columns("user_id", "post_id").
			Values(userId, postId).
			ExecContext(ctx)
		if db2.IsDupKeyErr(err) {
			return db2.ErrDuplicate
		}
		return err
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (idb *InteractionDB) RemoveParticipant(ctx context.Context, userId string, postId int64) error {
	_, err := idb.sess.SQL().
		DeleteFrom("event_participant").
		Where("user_id = ? AND post_id = ?", userId, postId).
		ExecContext(ctx)
	return err
}

func (idb *InteractionDB) GetParticipants(ctx context.Context, postId int64) ([]*model.EventParticipant, error) {
	var participants []*model.EventParticipant
	err := idb.sess.WithContext(ctx).
		Collection("event_participant").
		Find("post_id = ?", postId).
		OrderBy("created_at").
		All(&participants)
	return participants, err
}

// IncrementViewCount invokes the backend's increment_view_count procedure.
// Per-session dedup happens above this layer; the count itself is
// best-effort by design.
func (idb *InteractionDB) IncrementViewCount(ctx context.Context, postId int64) error {
	_, err := idb.sess.SQL().ExecContext(ctx, db.Raw(`SELECT increment_view_count(?)`, postId))
	return err
}

type flattenedLeaderboardEntry struct {
	UserId      string `db:"firebase_id"`
	DisplayName string `db:"display_name"`
	Points      int64  `db:"points"`
}

// GetLeaderboard recomputes point totals from interaction rows on every
// call: authored posts, likes received, votes cast, forms answered and
// events attended all score. Nothing is stored.
func (idb *InteractionDB) GetLeaderboard(ctx context.Context, orgId *int64, limit int16) ([]*model.LeaderboardEntry, error) {
	query := `
SELECT person.firebase_id, person.display_name,
		(SELECT COUNT(*) * 10 FROM post AS p WHERE p.author_id = person.firebase_id) +
		(SELECT COUNT(*) * 2 FROM post_like AS pl
			JOIN post AS p2 ON pl.post_id = p2.id
			WHERE p2.author_id = person.firebase_id) +
		(SELECT COUNT(*) FROM poll_vote AS pv WHERE pv.user_id = person.firebase_id) +
		(SELECT COUNT(*) * 3 FROM form_response AS fr WHERE fr.user_id = person.firebase_id) +
		(SELECT COUNT(*) * 5 FROM event_participant AS ep WHERE ep.user_id = person.firebase_id)
	AS points
	FROM person`
	args := []interface{}{}
	if orgId != nil {
		query += `
	JOIN membership ON membership.user_id = person.firebase_id AND membership.org_id = ?`
		args = append(args, *orgId)
	}
	query += `
	ORDER BY points DESC, person.firebase_id
	LIMIT ?`
	args = append(args, int(limit))

	rows, err := idb.sess.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.LeaderboardEntry
	rank := 1
	for rows.Next() {
		var flattened flattenedLeaderboardEntry
		if err := rows.Scan(&flattened.UserId, &flattened.DisplayName, &flattened.Points); err != nil {
			return nil, err
		}
		entries = append(entries, &model.LeaderboardEntry{
			User: &model.User{
				Id:          flattened.UserId,
				DisplayName: flattened.DisplayName,
				Avatar:      util.Avatar(flattened.UserId),
			},
			Points: flattened.Points,
			Rank:   rank,
		})
		rank++
	}
	return entries, rows.Err()
}
