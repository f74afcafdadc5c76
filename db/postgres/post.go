package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	db2 "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
	"github.com/upper/db/v4"
)

type PostDB struct {
	sess db.Session
}

func getPostDB(sess db.Session) *PostDB {
	return &PostDB{sess}
}

func (pdb *PostDB) CreatePost(ctx context.Context, post *db2.CreatePost) (int64, error) {
	tagsJSON, err := json.Marshal(post.Tags)
	if err != nil {
		return 0, err
	}

	var postId int64
	err = pdb.sess.TxContext(ctx, func(sess db.Session) error {
		// base row and side detail land in one transaction so a partial
		// failure can never leave an orphaned base row
		row, err := sess.SQL().QueryRowContext(ctx, `
INSERT INTO post (author_id, org_id, title, content, tags, status, is_pinned, post_type)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`,
			post.AuthorId, post.OrgId, post.Title, post.Content, string(tagsJSON),
			post.Status, post.IsPinned, post.Type)
		if err != nil {
			return err
		}
		if err := row.Scan(&postId); err != nil {
			return err
		}
		return insertSideDetail(ctx, sess, postId, post)
	}, nil)
	return postId, err
}

func insertSideDetail(ctx context.Context, sess db.Session, postId int64, post *db2.CreatePost) error {
	switch post.Type {
	case model.PostTypeEvent:
		_, err := sess.SQL().
			InsertInto("event_post").
			Columns("post_id", "start_date", "end_date", "location", "max_participants").
			Values(postId, post.Event.StartDate, post.Event.EndDate, post.Event.Location, post.Event.MaxParticipants).
			ExecContext(ctx)
		return err
	case model.PostTypePoll:
		optionsJSON, err := json.Marshal(post.Poll.Options)
		if err != nil {
			return err
		}
		_, err = sess.SQL().
			InsertInto("poll_post").
			Columns("post_id", "question", "options", "multiple_choice", "end_date").
			Values(postId, post.Poll.Question, string(optionsJSON), post.Poll.MultipleChoice, post.Poll.EndDate).
			ExecContext(ctx)
		return err
	case model.PostTypeFeedback:
		fieldsJSON, err := json.Marshal(post.Feedback.Fields)
		if err != nil {
			return err
		}
		_, err = sess.SQL().
			InsertInto("feedback_post").
			Columns("post_id", "description", "fields", "deadline", "anonymous").
			Values(postId, post.Feedback.Description, string(fieldsJSON), post.Feedback.Deadline, post.Feedback.Anonymous).
			ExecContext(ctx)
		return err
	}
	return nil
}

type flattenedPost struct {
	Id          int64         `db:"id"`
	AuthorId    string        `db:"author_id"`
	DisplayName string        `db:"display_name"`
	IsAdmin     bool          `db:"is_admin"`
	OrgId       sql.NullInt64 `db:"org_id"`
	Title       string        `db:"title"`
	Content     string        `db:"content"`
	TagsJSONStr string        `db:"tags"`
	Status      string        `db:"status"`
	IsPinned    bool          `db:"is_pinned"`
	PostType    string        `db:"post_type"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
	ViewCount   int64         `db:"view_count"`
	LikeCount   int           `db:"like_count"`
	ViewerLiked bool          `db:"viewer_liked"`
}

var postColumns = []interface{}{
	"p.id",
	"p.author_id",
	"person.display_name",
	"person.is_admin",
	"p.org_id",
	"p.title",
	"p.content",
	"p.tags",
	"p.status",
	"p.is_pinned",
	"p.post_type",
	"p.created_at",
	"p.updated_at",
	"p.view_count",
	db.Raw("(SELECT COUNT(*) FROM post_like AS pl WHERE pl.post_id = p.id) AS like_count"),
}

func viewerLikedColumn(viewerId string) *db.RawExpr {
	if viewerId == "" {
		return db.Raw("FALSE AS viewer_liked")
	}
	return db.Raw("EXISTS(SELECT 1 FROM post_like AS pl2 WHERE pl2.post_id = p.id AND pl2.user_id = ?) AS viewer_liked", viewerId)
}

func (pdb *PostDB) GetPostById(ctx context.Context, id int64, opts *db2.PostQueryOpts) (*model.Post, error) {
	var flattened flattenedPost
	if err := pdb.sess.SQL().
		Select(append(postColumns, viewerLikedColumn(opts.ViewerId))...).
		From("post AS p").
		Join("person").On("p.author_id = person.firebase_id").
		Where("p.id = ?", id).
		IteratorContext(ctx).
		One(&flattened); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}

	post, err := pdb.buildPostFromFlattened(&flattened)
	if err != nil {
		return nil, err
	}
	rawTypes := map[int64]model.PostType{post.Id: model.PostType(flattened.PostType)}
	if err := pdb.loadDetails(ctx, []*model.Post{post}, rawTypes, opts.ViewerId); err != nil {
		return nil, err
	}
	return post, nil
}

func (pdb *PostDB) GetPosts(ctx context.Context, query *db2.PostsListQuery) ([]*model.Post, error) {
	selector := pdb.sess.SQL().
		Select(append(postColumns, viewerLikedColumn(query.ViewerId))...).
		From("post AS p").
		Join("person").On("p.author_id = person.firebase_id")

	selector = applyPostFilters(selector, query)

	switch query.SortField {
	case db2.SortByLikeCount:
		if query.MaxLikes != nil && query.LastId != "" {
			selector = selector.Where(
				db.Raw("((SELECT COUNT(*) FROM post_like AS pl3 WHERE pl3.post_id = p.id) < ? OR ((SELECT COUNT(*) FROM post_like AS pl3 WHERE pl3.post_id = p.id) = ? AND p.id < ?))",
					query.MaxLikes.Val, query.MaxLikes.Val, query.LastId))
		}
		selector = selector.OrderBy(db.Raw("like_count DESC"), "p.id DESC")
	case db2.SortByViewCount:
		if query.MaxViews != nil && query.LastId != "" {
			selector = selector.Where("(p.view_count < ? OR (p.view_count = ? AND p.id < ?))",
				query.MaxViews.Val, query.MaxViews.Val, query.LastId)
		}
		selector = selector.OrderBy("p.view_count DESC", "p.id DESC")
	default:
		if query.From != nil {
			if query.LastId != "" {
				selector = selector.Where("(p.created_at < ? OR (p.created_at = ? AND p.id < ?))",
					query.From, query.From, query.LastId)
			} else {
				selector = selector.Where("p.created_at < ?", query.From)
			}
		}
		selector = selector.OrderBy("p.created_at DESC", "p.id DESC")
	}

	var flattenedPosts []flattenedPost
	if err := selector.
		Limit(int(query.Limit)).
		IteratorContext(ctx).
		All(&flattenedPosts); err != nil {
		return nil, err
	}

	posts := make([]*model.Post, len(flattenedPosts))
	rawTypes := make(map[int64]model.PostType, len(flattenedPosts))
	for i, flattened := range flattenedPosts {
		post, err := pdb.buildPostFromFlattened(&flattened)
		if err != nil {
			return nil, err
		}
		posts[i] = post
		rawTypes[post.Id] = model.PostType(flattened.PostType)
	}
	if err := pdb.loadDetails(ctx, posts, rawTypes, query.ViewerId); err != nil {
		return nil, err
	}
	return posts, nil
}

func applyPostFilters(selector db.Selector, query *db2.PostsListQuery) db.Selector {
	if len(query.OrgIds) > 0 {
		selector = selector.Where("p.org_id IN ?", query.OrgIds)
	}
	if query.Status != nil {
		selector = selector.Where("p.status = ?", *query.Status)
	}
	if query.Type != nil {
		selector = selector.Where("p.post_type = ?", *query.Type)
	}
	if query.AuthorId != "" {
		selector = selector.Where("p.author_id = ?", query.AuthorId)
	}
	if query.Tag != "" {
		selector = selector.Where(db.Raw("jsonb_exists(p.tags::jsonb, ?)", query.Tag))
	}
	if query.SearchText != "" {
		pattern := "%" + query.SearchText + "%"
		selector = selector.Where("(p.title ILIKE ? OR p.content ILIKE ?)", pattern, pattern)
	}
	return selector
}

func (pdb *PostDB) buildPostFromFlattened(flattened *flattenedPost) (*model.Post, error) {
	var tags []string
	if flattened.TagsJSONStr != "" {
		if err := json.Unmarshal([]byte(flattened.TagsJSONStr), &tags); err != nil {
			return nil, err
		}
	}

	var orgId *int64
	if flattened.OrgId.Valid {
		orgId = &flattened.OrgId.Int64
	}

	return &model.Post{
		Id: flattened.Id,
		Author: &model.DisplayableUser{
			User: &model.User{
				Id:          flattened.AuthorId,
				DisplayName: flattened.DisplayName,
				IsAdmin:     flattened.IsAdmin,
				Avatar:      util.Avatar(flattened.AuthorId),
			},
		},
		OrgId:       orgId,
		Title:       flattened.Title,
		Content:     flattened.Content,
		Tags:        tags,
		Status:      model.PostStatus(flattened.Status),
		IsPinned:    flattened.IsPinned,
		CreatedAt:   flattened.CreatedAt,
		UpdatedAt:   flattened.UpdatedAt,
		ViewCount:   flattened.ViewCount,
		LikeCount:   flattened.LikeCount,
		ViewerLiked: flattened.ViewerLiked,
		// Detail set by loadDetails via the normalizer; the raw tag never
		// escapes this package
		Detail: model.GeneralDetail{},
	}, nil
}

type flattenedEventDetail struct {
	PostId           int64         `db:"post_id"`
	StartDate        time.Time     `db:"start_date"`
	EndDate          time.Time     `db:"end_date"`
	Location         string        `db:"location"`
	MaxParticipants  sql.NullInt64 `db:"max_participants"`
	ParticipantCount int           `db:"participant_count"`
	ViewerJoined     bool          `db:"viewer_joined"`
}

type flattenedPollDetail struct {
	PostId         int64        `db:"post_id"`
	Question       string       `db:"question"`
	OptionsJSONStr string       `db:"options"`
	MultipleChoice bool         `db:"multiple_choice"`
	EndDate        sql.NullTime `db:"end_date"`
}

type flattenedFeedbackDetail struct {
	PostId          int64        `db:"post_id"`
	Description     string       `db:"description"`
	FieldsJSONStr   string       `db:"fields"`
	Deadline        sql.NullTime `db:"deadline"`
	Anonymous       bool         `db:"anonymous"`
	ViewerResponded bool         `db:"viewer_responded"`
}

// loadDetails fetches the side rows for the given posts in one query per
// variant, runs everything through the normalizer, and attaches per-viewer
// interaction state.
func (pdb *PostDB) loadDetails(ctx context.Context, posts []*model.Post, rawTypes map[int64]model.PostType, viewerId string) error {
	idsByType := make(map[model.PostType][]int64)
	byId := make(map[int64]*model.Post, len(posts))
	for _, post := range posts {
		idsByType[rawTypes[post.Id]] = append(idsByType[rawTypes[post.Id]], post.Id)
		byId[post.Id] = post
	}

	details := make(map[int64]model.Detail)
	if ids := idsByType[model.PostTypeEvent]; len(ids) > 0 {
		if err := pdb.loadEventDetails(ctx, ids, viewerId, details); err != nil {
			return err
		}
	}
	if ids := idsByType[model.PostTypePoll]; len(ids) > 0 {
		if err := pdb.loadPollDetails(ctx, ids, viewerId, details); err != nil {
			return err
		}
	}
	if ids := idsByType[model.PostTypeFeedback]; len(ids) > 0 {
		if err := pdb.loadFeedbackDetails(ctx, ids, viewerId, details); err != nil {
			return err
		}
	}

	for rawType, ids := range idsByType {
		for _, id := range ids {
			post := byId[id]
			detail, content := model.BuildDetail(rawType, details[id], post.Content)
			post.Detail = detail
			post.Content = content
		}
	}
	return nil
}

func (pdb *PostDB) loadEventDetails(ctx context.Context, ids []int64, viewerId string, out map[int64]model.Detail) error {
	viewerJoined := db.Raw("FALSE AS viewer_joined")
	if viewerId != "" {
		viewerJoined = db.Raw("EXISTS(SELECT 1 FROM event_participant AS ep2 WHERE ep2.post_id = ep.post_id AND ep2.user_id = ?) AS viewer_joined", viewerId)
	}

	var rows []flattenedEventDetail
	if err := pdb.sess.SQL().
		Select("ep.post_id", "ep.start_date", "ep.end_date", "ep.location", "ep.max_participants",
			db.Raw("(SELECT COUNT(*) FROM event_participant AS epc WHERE epc.post_id = ep.post_id) AS participant_count"),
			viewerJoined).
		From("event_post AS ep").
		Where("ep.post_id IN ?", ids).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return err
	}
	for _, row := range rows {
		detail := &model.EventDetail{
			StartDate:        row.StartDate,
			EndDate:          row.EndDate,
			Location:         row.Location,
			ParticipantCount: row.ParticipantCount,
			ViewerJoined:     row.ViewerJoined,
		}
		if row.MaxParticipants.Valid {
			max := int(row.MaxParticipants.Int64)
			detail.MaxParticipants = &max
		}
		out[row.PostId] = detail
	}
	return nil
}

func (pdb *PostDB) loadPollDetails(ctx context.Context, ids []int64, viewerId string, out map[int64]model.Detail) error {
	var rows []flattenedPollDetail
	if err := pdb.sess.SQL().
		Select("pp.post_id", "pp.question", "pp.options", "pp.multiple_choice", "pp.end_date").
		From("poll_post AS pp").
		Where("pp.post_id IN ?", ids).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return err
	}
	for _, row := range rows {
		var options []string
		if err := json.Unmarshal([]byte(row.OptionsJSONStr), &options); err != nil {
			return err
		}
		detail := &model.PollDetail{
			Question:       row.Question,
			Options:        options,
			MultipleChoice: row.MultipleChoice,
		}
		if row.EndDate.Valid {
			endDate := row.EndDate.Time
			detail.EndDate = &endDate
		}
		tallies, err := (&InteractionDB{pdb.sess}).GetVoteTallies(ctx, row.PostId, len(options))
		if err != nil {
			return err
		}
		detail.Results = tallies
		if viewerId != "" {
			vote, err := (&InteractionDB{pdb.sess}).GetVote(ctx, viewerId, row.PostId)
			if err != nil {
				return err
			}
			detail.ViewerVote = vote
		}
		out[row.PostId] = detail
	}
	return nil
}

func (pdb *PostDB) loadFeedbackDetails(ctx context.Context, ids []int64, viewerId string, out map[int64]model.Detail) error {
	viewerResponded := db.Raw("FALSE AS viewer_responded")
	if viewerId != "" {
		viewerResponded = db.Raw("EXISTS(SELECT 1 FROM form_response AS fr WHERE fr.post_id = fp.post_id AND fr.user_id = ?) AS viewer_responded", viewerId)
	}

	var rows []flattenedFeedbackDetail
	if err := pdb.sess.SQL().
		Select("fp.post_id", "fp.description", "fp.fields", "fp.deadline", "fp.anonymous", viewerResponded).
		From("feedback_post AS fp").
		Where("fp.post_id IN ?", ids).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return err
	}
	for _, row := range rows {
		var fields []model.FormField
		if err := json.Unmarshal([]byte(row.FieldsJSONStr), &fields); err != nil {
			return err
		}
		detail := &model.FeedbackDetail{
			Description:     row.Description,
			Fields:          fields,
			Anonymous:       row.Anonymous,
			ViewerResponded: row.ViewerResponded,
		}
		if row.Deadline.Valid {
			deadline := row.Deadline.Time
			detail.Deadline = &deadline
		}
		out[row.PostId] = detail
	}
	return nil
}

func (pdb *PostDB) UpdatePost(ctx context.Context, id int64, patch *db2.UpdatePost) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Tags != nil {
		tagsJSON, err := json.Marshal(patch.Tags)
		if err != nil {
			return err
		}
		updates["tags"] = string(tagsJSON)
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.IsPinned != nil {
		updates["is_pinned"] = *patch.IsPinned
	}
	_, err := pdb.sess.SQL().
		Update("post").
		Set(updates).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

// DeletePost removes the base row only; side rows and interaction rows
// cascade at the backend.
func (pdb *PostDB) DeletePost(ctx context.Context, id int64) error {
	_, err := pdb.sess.SQL().
		DeleteFrom("post").
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}
