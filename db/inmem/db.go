// Package inmem implements db.Database on plain maps. It backs service and
// controller tests so they can run without the hosted backend; behavior
// (uniqueness, capacity, cascade on delete) mirrors the real store.
package inmem

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	db2 "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
)

type interactionKey struct {
	userId string
	postId int64
}

type storedPost struct {
	id        int64
	authorId  string
	orgId     *int64
	title     string
	content   string
	tags      []string
	status    model.PostStatus
	isPinned  bool
	postType  model.PostType
	createdAt time.Time
	updatedAt time.Time
	viewCount int64

	event    *db2.CreateEventDetail
	poll     *db2.CreatePollDetail
	feedback *db2.CreateFeedbackDetail
}

type InMemDB struct {
	mu sync.Mutex

	nextPostId int64
	nextOrgId  int64

	users        map[string]*model.User
	orgs         map[int64]*model.Organization
	memberships  map[interactionKey]*model.Membership // key.postId reused as orgId
	posts        map[int64]*storedPost
	likes        map[interactionKey]time.Time
	votes        map[interactionKey]*model.PollVote
	responses    map[interactionKey]*model.FormResponse
	participants map[interactionKey]time.Time
}

func NewDatabase() *InMemDB {
	return &InMemDB{
		users:        make(map[string]*model.User),
		orgs:         make(map[int64]*model.Organization),
		memberships:  make(map[interactionKey]*model.Membership),
		posts:        make(map[int64]*storedPost),
		likes:        make(map[interactionKey]time.Time),
		votes:        make(map[interactionKey]*model.PollVote),
		responses:    make(map[interactionKey]*model.FormResponse),
		participants: make(map[interactionKey]time.Time),
	}
}

var _ db2.Database = (*InMemDB)(nil)

func (mdb *InMemDB) GetSQLDB() *sql.DB { return nil }
func (mdb *InMemDB) Close() error      { return nil }

// posts

func (mdb *InMemDB) CreatePost(ctx context.Context, req *db2.CreatePost) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	mdb.nextPostId++
	now := time.Now()
	mdb.posts[mdb.nextPostId] = &storedPost{
		id:        mdb.nextPostId,
		authorId:  req.AuthorId,
		orgId:     req.OrgId,
		title:     req.Title,
		content:   req.Content,
		tags:      req.Tags,
		status:    req.Status,
		isPinned:  req.IsPinned,
		postType:  req.Type,
		createdAt: now,
		updatedAt: now,
		event:     req.Event,
		poll:      req.Poll,
		feedback:  req.Feedback,
	}
	return mdb.nextPostId, nil
}

func (mdb *InMemDB) GetPostById(ctx context.Context, id int64, opts *db2.PostQueryOpts) (*model.Post, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	stored, ok := mdb.posts[id]
	if !ok {
		return nil, nil
	}
	return mdb.buildPost(stored, opts.ViewerId), nil
}

func (mdb *InMemDB) GetPosts(ctx context.Context, query *db2.PostsListQuery) ([]*model.Post, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	var matched []*storedPost
	for _, stored := range mdb.posts {
		if !mdb.matches(stored, query) {
			continue
		}
		matched = append(matched, stored)
	}

	switch query.SortField {
	case db2.SortByLikeCount:
		sort.Slice(matched, func(i, j int) bool {
			li, lj := mdb.likeCount(matched[i].id), mdb.likeCount(matched[j].id)
			if li != lj {
				return li > lj
			}
			return matched[i].id > matched[j].id
		})
	case db2.SortByViewCount:
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].viewCount > matched[j].viewCount
		})
	default:
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].createdAt.Equal(matched[j].createdAt) {
				return matched[i].createdAt.After(matched[j].createdAt)
			}
			return matched[i].id > matched[j].id
		})
	}

	limit := len(matched)
	if query.PostsListQueryOpts != nil && int(query.Limit) > 0 && int(query.Limit) < limit {
		limit = int(query.Limit)
	}
	viewerId := ""
	if query.PostsListQueryOpts != nil {
		viewerId = query.ViewerId
	}

	posts := make([]*model.Post, 0, limit)
	for _, stored := range matched[:limit] {
		posts = append(posts, mdb.buildPost(stored, viewerId))
	}
	return posts, nil
}

func (mdb *InMemDB) matches(stored *storedPost, query *db2.PostsListQuery) bool {
	if len(query.OrgIds) > 0 {
		found := false
		for _, orgId := range query.OrgIds {
			if stored.orgId != nil && *stored.orgId == orgId {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.Status != nil && stored.status != *query.Status {
		return false
	}
	if query.Type != nil && stored.postType != *query.Type {
		return false
	}
	if query.AuthorId != "" && stored.authorId != query.AuthorId {
		return false
	}
	if query.Tag != "" {
		found := false
		for _, tag := range stored.tags {
			if tag == query.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.SearchText != "" {
		needle := strings.ToLower(query.SearchText)
		if !strings.Contains(strings.ToLower(stored.title), needle) &&
			!strings.Contains(strings.ToLower(stored.content), needle) {
			return false
		}
	}
	if query.From != nil && !stored.createdAt.Before(*query.From) {
		return false
	}
	return true
}

func (mdb *InMemDB) buildPost(stored *storedPost, viewerId string) *model.Post {
	author := mdb.users[stored.authorId]
	if author == nil {
		author = &model.User{Id: stored.authorId, Avatar: util.Avatar(stored.authorId)}
	}

	detail, content := model.BuildDetail(stored.postType, mdb.buildSideDetail(stored, viewerId), stored.content)
	_, viewerLiked := mdb.likes[interactionKey{viewerId, stored.id}]
	return &model.Post{
		Id:          stored.id,
		Author:      &model.DisplayableUser{User: author},
		OrgId:       stored.orgId,
		Title:       stored.title,
		Content:     content,
		Tags:        stored.tags,
		Status:      stored.status,
		IsPinned:    stored.isPinned,
		CreatedAt:   stored.createdAt,
		UpdatedAt:   stored.updatedAt,
		ViewCount:   stored.viewCount,
		LikeCount:   mdb.likeCount(stored.id),
		ViewerLiked: viewerId != "" && viewerLiked,
		Detail:      detail,
	}
}

func (mdb *InMemDB) buildSideDetail(stored *storedPost, viewerId string) model.Detail {
	switch stored.postType {
	case model.PostTypeEvent:
		if stored.event == nil {
			return nil
		}
		_, joined := mdb.participants[interactionKey{viewerId, stored.id}]
		return &model.EventDetail{
			StartDate:        stored.event.StartDate,
			EndDate:          stored.event.EndDate,
			Location:         stored.event.Location,
			MaxParticipants:  stored.event.MaxParticipants,
			ParticipantCount: mdb.participantCount(stored.id),
			ViewerJoined:     viewerId != "" && joined,
		}
	case model.PostTypePoll:
		if stored.poll == nil {
			return nil
		}
		results := make([]int, len(stored.poll.Options))
		for key, vote := range mdb.votes {
			if key.postId == stored.id && vote.OptionIndex < len(results) {
				results[vote.OptionIndex]++
			}
		}
		return &model.PollDetail{
			Question:       stored.poll.Question,
			Options:        stored.poll.Options,
			MultipleChoice: stored.poll.MultipleChoice,
			EndDate:        stored.poll.EndDate,
			Results:        results,
			ViewerVote:     mdb.votes[interactionKey{viewerId, stored.id}],
		}
	case model.PostTypeFeedback:
		if stored.feedback == nil {
			return nil
		}
		_, responded := mdb.responses[interactionKey{viewerId, stored.id}]
		return &model.FeedbackDetail{
			Description:     stored.feedback.Description,
			Fields:          stored.feedback.Fields,
			Deadline:        stored.feedback.Deadline,
			Anonymous:       stored.feedback.Anonymous,
			ViewerResponded: viewerId != "" && responded,
		}
	}
	return nil
}

func (mdb *InMemDB) likeCount(postId int64) int {
	count := 0
	for key := range mdb.likes {
		if key.postId == postId {
			count++
		}
	}
	return count
}

func (mdb *InMemDB) participantCount(postId int64) int {
	count := 0
	for key := range mdb.participants {
		if key.postId == postId {
			count++
		}
	}
	return count
}

func (mdb *InMemDB) UpdatePost(ctx context.Context, id int64, patch *db2.UpdatePost) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	stored, ok := mdb.posts[id]
	if !ok {
		return nil
	}
	if patch.Title != nil {
		stored.title = *patch.Title
	}
	if patch.Content != nil {
		stored.content = *patch.Content
	}
	if patch.Tags != nil {
		stored.tags = patch.Tags
	}
	if patch.Status != nil {
		stored.status = *patch.Status
	}
	if patch.IsPinned != nil {
		stored.isPinned = *patch.IsPinned
	}
	stored.updatedAt = time.Now()
	return nil
}

func (mdb *InMemDB) DeletePost(ctx context.Context, id int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	delete(mdb.posts, id)
	for key := range mdb.likes {
		if key.postId == id {
			delete(mdb.likes, key)
		}
	}
	for key := range mdb.votes {
		if key.postId == id {
			delete(mdb.votes, key)
		}
	}
	for key := range mdb.responses {
		if key.postId == id {
			delete(mdb.responses, key)
		}
	}
	for key := range mdb.participants {
		if key.postId == id {
			delete(mdb.participants, key)
		}
	}
	return nil
}

// interactions

func (mdb *InMemDB) CreateLike(ctx context.Context, userId string, postId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	key := interactionKey{userId, postId}
	if _, exists := mdb.likes[key]; exists {
		return db2.ErrDuplicate
	}
	mdb.likes[key] = time.Now()
	return nil
}

func (mdb *InMemDB) DeleteLike(ctx context.Context, userId string, postId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	delete(mdb.likes, interactionKey{userId, postId})
	return nil
}

func (mdb *InMemDB) GetLike(ctx context.Context, userId string, postId int64) (bool, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	_, exists := mdb.likes[interactionKey{userId, postId}]
	return exists, nil
}

func (mdb *InMemDB) GetLikeCount(ctx context.Context, postId int64) (int, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return mdb.likeCount(postId), nil
}

func (mdb *InMemDB) CreateVote(ctx context.Context, userId string, postId int64, optionIndex int) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	key := interactionKey{userId, postId}
	if _, exists := mdb.votes[key]; exists {
		return db2.ErrDuplicate
	}
	mdb.votes[key] = &model.PollVote{
		UserId:      userId,
		PostId:      postId,
		OptionIndex: optionIndex,
		CreatedAt:   time.Now(),
	}
	return nil
}

func (mdb *InMemDB) GetVote(ctx context.Context, userId string, postId int64) (*model.PollVote, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return mdb.votes[interactionKey{userId, postId}], nil
}

func (mdb *InMemDB) GetVoteTallies(ctx context.Context, postId int64, numOptions int) ([]int, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	tallies := make([]int, numOptions)
	for key, vote := range mdb.votes {
		if key.postId == postId && vote.OptionIndex >= 0 && vote.OptionIndex < numOptions {
			tallies[vote.OptionIndex]++
		}
	}
	return tallies, nil
}

func (mdb *InMemDB) CreateFormResponse(ctx context.Context, response *model.FormResponse) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	key := interactionKey{response.UserId, response.PostId}
	if _, exists := mdb.responses[key]; exists {
		return db2.ErrDuplicate
	}
	copied := *response
	copied.CreatedAt = time.Now()
	mdb.responses[key] = &copied
	return nil
}

func (mdb *InMemDB) GetFormResponse(ctx context.Context, userId string, postId int64) (*model.FormResponse, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return mdb.responses[interactionKey{userId, postId}], nil
}

func (mdb *InMemDB) GetFormResponses(ctx context.Context, postId int64) ([]*model.FormResponse, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	var responses []*model.FormResponse
	for key, response := range mdb.responses {
		if key.postId == postId {
			responses = append(responses, response)
		}
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].CreatedAt.Before(responses[j].CreatedAt)
	})
	return responses, nil
}

func (mdb *InMemDB) AddParticipant(ctx context.Context, userId string, postId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	key := interactionKey{userId, postId}
	if _, exists := mdb.participants[key]; exists {
		return db2.ErrDuplicate
	}
	stored, ok := mdb.posts[postId]
	if ok && stored.event != nil && stored.event.MaxParticipants != nil &&
		mdb.participantCount(postId) >= *stored.event.MaxParticipants {
		return db2.ErrEventFull
	}
	mdb.participants[key] = time.Now()
	return nil
}

func (mdb *InMemDB) RemoveParticipant(ctx context.Context, userId string, postId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	delete(mdb.participants, interactionKey{userId, postId})
	return nil
}

func (mdb *InMemDB) GetParticipants(ctx context.Context, postId int64) ([]*model.EventParticipant, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	var participants []*model.EventParticipant
	for key, joinedAt := range mdb.participants {
		if key.postId == postId {
			participants = append(participants, &model.EventParticipant{
				UserId:    key.userId,
				PostId:    postId,
				CreatedAt: joinedAt,
			})
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].CreatedAt.Before(participants[j].CreatedAt)
	})
	return participants, nil
}

func (mdb *InMemDB) IncrementViewCount(ctx context.Context, postId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	if stored, ok := mdb.posts[postId]; ok {
		stored.viewCount++
	}
	return nil
}

func (mdb *InMemDB) GetLeaderboard(ctx context.Context, orgId *int64, limit int16) ([]*model.LeaderboardEntry, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	points := make(map[string]int64)
	for _, stored := range mdb.posts {
		points[stored.authorId] += 10
	}
	for key := range mdb.likes {
		if stored, ok := mdb.posts[key.postId]; ok {
			points[stored.authorId] += 2
		}
	}
	for key := range mdb.votes {
		points[key.userId]++
	}
	for key := range mdb.responses {
		points[key.userId] += 3
	}
	for key := range mdb.participants {
		points[key.userId] += 5
	}

	var entries []*model.LeaderboardEntry
	for userId, total := range points {
		if orgId != nil {
			if _, member := mdb.memberships[interactionKey{userId, *orgId}]; !member {
				continue
			}
		}
		user := mdb.users[userId]
		if user == nil {
			user = &model.User{Id: userId}
		}
		entries = append(entries, &model.LeaderboardEntry{User: user, Points: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].User.Id < entries[j].User.Id
	})
	if int(limit) > 0 && int(limit) < len(entries) {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// orgs

func (mdb *InMemDB) CreateOrg(ctx context.Context, req *db2.CreateOrg) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	mdb.nextOrgId++
	now := time.Now()
	org := &model.Organization{
		Id:          mdb.nextOrgId,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		LogoUrl:     req.LogoUrl,
		CreatedAt:   &now,
	}
	if req.ParentId != nil {
		org.ParentId.Int64 = *req.ParentId
		org.ParentId.Valid = true
	}
	mdb.orgs[org.Id] = org
	mdb.memberships[interactionKey{req.CreatorId, org.Id}] = &model.Membership{
		UserId: req.CreatorId,
		OrgId:  org.Id,
		Role:   model.RoleAdmin,
	}
	return org.Id, nil
}

func (mdb *InMemDB) GetOrgsByIds(ctx context.Context, ids []int64, opts *db2.GetOrgsQueryOpts) ([]*model.OrgWithMemberStatus, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	var orgs []*model.OrgWithMemberStatus
	appendOrg := func(org *model.Organization) {
		status := &model.OrgWithMemberStatus{Organization: org}
		if opts.ForUserId != "" {
			if membership, ok := mdb.memberships[interactionKey{opts.ForUserId, org.Id}]; ok {
				status.MemberRole = membership.Role
			}
		}
		orgs = append(orgs, status)
	}

	if ids == nil {
		for _, org := range mdb.orgs {
			appendOrg(org)
		}
	} else {
		for _, id := range ids {
			if org, ok := mdb.orgs[id]; ok {
				appendOrg(org)
			}
		}
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}

func (mdb *InMemDB) CreateMembership(ctx context.Context, membership *model.Membership) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	key := interactionKey{membership.UserId, membership.OrgId}
	if _, exists := mdb.memberships[key]; exists {
		return db2.ErrDuplicate
	}
	mdb.memberships[key] = membership
	return nil
}

func (mdb *InMemDB) DeleteMembership(ctx context.Context, userId string, orgId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	delete(mdb.memberships, interactionKey{userId, orgId})
	return nil
}

func (mdb *InMemDB) GetMembership(ctx context.Context, userId string, orgId int64) (*model.Membership, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return mdb.memberships[interactionKey{userId, orgId}], nil
}

func (mdb *InMemDB) GetMembershipsForUser(ctx context.Context, userId string) ([]*model.Membership, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	var memberships []*model.Membership
	for key, membership := range mdb.memberships {
		if key.userId == userId {
			memberships = append(memberships, membership)
		}
	}
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].OrgId < memberships[j].OrgId })
	return memberships, nil
}

func (mdb *InMemDB) PromoteToOfficer(ctx context.Context, orgId int64, userId string) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	if membership, ok := mdb.memberships[interactionKey{userId, orgId}]; ok {
		membership.Role = model.RoleOfficer
	}
	return nil
}

func (mdb *InMemDB) DemoteToMember(ctx context.Context, orgId int64, userId string) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	if membership, ok := mdb.memberships[interactionKey{userId, orgId}]; ok {
		membership.Role = model.RoleMember
	}
	return nil
}

func (mdb *InMemDB) DeleteOrganization(ctx context.Context, orgId int64, confirmationCode string) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()

	if confirmationCode == "" {
		return db2.ErrBadConfirmation
	}
	delete(mdb.orgs, orgId)
	for key := range mdb.memberships {
		if key.postId == orgId {
			delete(mdb.memberships, key)
		}
	}
	for id, stored := range mdb.posts {
		if stored.orgId != nil && *stored.orgId == orgId {
			delete(mdb.posts, id)
		}
	}
	return nil
}

// users

func (mdb *InMemDB) CreateUser(ctx context.Context, user *model.User) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	mdb.users[user.Id] = user
	return nil
}

func (mdb *InMemDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return mdb.users[id], nil
}
