package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
	"scrimhub/internal/repository"
	"scrimhub/internal/scoring"
)

// In-memory fakes for the store interfaces. The mutex in each fake stands
// in for the store's transaction: every transactional unit runs under one
// lock acquisition, same all-or-nothing visibility as the real thing.

type fakeHonorStore struct {
	mu     sync.Mutex
	events map[string]models.HonorEvent
	stats  map[string]models.HonorStats
	totals map[string]int
}

func newFakeHonorStore() *fakeHonorStore {
	return &fakeHonorStore{
		events: make(map[string]models.HonorEvent),
		stats:  make(map[string]models.HonorStats),
		totals: make(map[string]int),
	}
}

// seedEvent plants an event without touching stats, for rate-limit windows.
func (f *fakeHonorStore) seedEvent(event models.HonorEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
}

func (f *fakeHonorStore) seedStats(stats models.HonorStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[stats.UID] = stats
}

func (f *fakeHonorStore) CountEventsSince(_ context.Context, from string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, event := range f.events {
		if event.From == from && !event.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeHonorStore) CountEventsToSince(_ context.Context, from, to string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, event := range f.events {
		if event.From == from && event.To == to && !event.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeHonorStore) Give(_ context.Context, event models.HonorEvent) (models.HonorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	f.events[event.ID] = event

	stats := f.stats[event.To]
	if event.Kind == models.HonorKindPos {
		stats.Pos++
	} else {
		stats.Neg++
	}
	stats = finishStats(event.To, stats)
	f.stats[event.To] = stats
	f.totals[event.To]++
	return stats, nil
}

func (f *fakeHonorStore) Revoke(_ context.Context, honorID, callerUID string) (models.HonorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[honorID]
	if !ok {
		return models.HonorStats{}, apperr.New(apperr.NotFound, "honor event %s not found", honorID)
	}
	if event.From != callerUID {
		return models.HonorStats{}, apperr.New(apperr.PermissionDenied, "only the original giver can revoke an honor")
	}

	stats := f.stats[event.To]
	if event.Kind == models.HonorKindPos {
		if stats.Pos > 0 {
			stats.Pos--
		}
	} else {
		if stats.Neg > 0 {
			stats.Neg--
		}
	}
	stats = finishStats(event.To, stats)
	f.stats[event.To] = stats
	delete(f.events, honorID)
	if f.totals[event.To] > 0 {
		f.totals[event.To]--
	}
	return stats, nil
}

func (f *fakeHonorStore) Stats(_ context.Context, uid string) (models.HonorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stats, ok := f.stats[uid]; ok {
		return stats, nil
	}
	return models.HonorStats{UID: uid, Stars: scoring.Stars(0, 0)}, nil
}

func (f *fakeHonorStore) Rankings(_ context.Context, afterUID string, limit int) ([]models.HonorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]models.HonorStats, 0, len(f.stats))
	for _, stats := range f.stats {
		all = append(all, stats)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Stars != all[j].Stars {
			return all[i].Stars > all[j].Stars
		}
		if all[i].Total != all[j].Total {
			return all[i].Total > all[j].Total
		}
		return all[i].UID > all[j].UID
	})

	start := 0
	if afterUID != "" {
		start = len(all)
		for i, stats := range all {
			if stats.UID == afterUID {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func finishStats(uid string, stats models.HonorStats) models.HonorStats {
	stats.UID = uid
	stats.Total = stats.Pos + stats.Neg
	stats.Stars = scoring.Stars(stats.Pos, stats.Neg)
	stats.UpdatedAt = time.Now()
	return stats
}

type fakeBlockStore struct {
	mu     sync.Mutex
	blocks map[[2]string]bool
}

func newFakeBlockStore() *fakeBlockStore {
	return &fakeBlockStore{blocks: make(map[[2]string]bool)}
}

func (f *fakeBlockStore) Exists(_ context.Context, blockerUID, blockedUID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks[[2]string{blockerUID, blockedUID}], nil
}

func (f *fakeBlockStore) Create(_ context.Context, blockerUID, blockedUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks[[2]string{blockerUID, blockedUID}] = true
	return nil
}

func (f *fakeBlockStore) Delete(_ context.Context, blockerUID, blockedUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blocks, [2]string{blockerUID, blockedUID})
	return nil
}

type fakeProfileStore struct {
	users map[string]models.User
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{users: make(map[string]models.User)}
}

func (f *fakeProfileStore) GetByUID(_ context.Context, uid string) (models.User, error) {
	user, ok := f.users[uid]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "user %s not found", uid)
	}
	return user, nil
}

func (f *fakeProfileStore) GetManyByUIDs(_ context.Context, uids []string) (map[string]models.User, error) {
	found := make(map[string]models.User, len(uids))
	for _, uid := range uids {
		if user, ok := f.users[uid]; ok {
			found[uid] = user
		}
	}
	return found, nil
}

type fakeNotificationStore struct {
	mu    sync.Mutex
	items []models.Notification
}

func (f *fakeNotificationStore) Create(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(_ context.Context, uid, afterID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var mine []models.Notification
	for _, n := range f.items {
		if n.UID == uid {
			mine = append(mine, n)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	start := 0
	if afterID != "" {
		start = len(mine)
		for i, n := range mine {
			if n.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, uid string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for i := range f.items {
		if f.items[i].UID != uid || f.items[i].Read {
			continue
		}
		for _, id := range ids {
			if f.items[i].ID == id {
				f.items[i].Read = true
				f.items[i].ReadAt = &now
			}
		}
	}
	return nil
}

func (f *fakeNotificationStore) forUser(uid string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.Notification
	for _, n := range f.items {
		if n.UID == uid {
			mine = append(mine, n)
		}
	}
	return mine
}

type fakeScrimStore struct {
	mu      sync.Mutex
	scrims  map[string]models.Scrim
	members map[string]map[string]bool
	idem    map[string]bool
}

func newFakeScrimStore() *fakeScrimStore {
	return &fakeScrimStore{
		scrims:  make(map[string]models.Scrim),
		members: make(map[string]map[string]bool),
		idem:    make(map[string]bool),
	}
}

func (f *fakeScrimStore) addMember(teamID, uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[teamID] == nil {
		f.members[teamID] = make(map[string]bool)
	}
	f.members[teamID][uid] = true
}

func (f *fakeScrimStore) Create(_ context.Context, scrim models.Scrim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if scrim.CreatedAt.IsZero() {
		scrim.CreatedAt = time.Now()
	}
	f.scrims[scrim.ID] = scrim
	return nil
}

func (f *fakeScrimStore) GetByID(_ context.Context, id string) (models.Scrim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	scrim, ok := f.scrims[id]
	if !ok {
		return models.Scrim{}, apperr.New(apperr.NotFound, "scrim %s not found", id)
	}
	return scrim, nil
}

func (f *fakeScrimStore) ListOpen(_ context.Context, afterID string, limit int) ([]models.Scrim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var open []models.Scrim
	for _, scrim := range f.scrims {
		if scrim.Status == models.ScrimStatusOpen {
			open = append(open, scrim)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].CreatedAt.After(open[j].CreatedAt)
		}
		return open[i].ID > open[j].ID
	})

	start := 0
	if afterID != "" {
		start = len(open)
		for i, scrim := range open {
			if scrim.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(open) {
		end = len(open)
	}
	return open[start:end], nil
}

func (f *fakeScrimStore) Challenge(_ context.Context, params repository.ChallengeParams) (models.Scrim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	scrim, ok := f.scrims[params.ScrimID]
	if !ok {
		return models.Scrim{}, apperr.New(apperr.NotFound, "scrim %s not found", params.ScrimID)
	}
	if scrim.Status != models.ScrimStatusOpen {
		return models.Scrim{}, apperr.New(apperr.FailedPrecondition,
			"scrim is not open for challenges (status: %s)", scrim.Status)
	}
	if scrim.TeamID == params.ChallengingTeamID {
		return models.Scrim{}, apperr.New(apperr.FailedPrecondition, "a team cannot challenge its own scrim")
	}
	if !f.members[params.ChallengingTeamID][params.CallerUID] {
		return models.Scrim{}, apperr.New(apperr.PermissionDenied,
			"caller is not a member of team %s", params.ChallengingTeamID)
	}
	if scrim.ChallengerTeamID != nil {
		return models.Scrim{}, apperr.New(apperr.AlreadyExists, "scrim already has a challenger")
	}

	now := time.Now()
	scrim.Status = models.ScrimStatusChallenged
	scrim.ChallengerTeamID = &params.ChallengingTeamID
	scrim.ChallengedBy = &params.CallerUID
	scrim.ChallengedAt = &now
	scrim.UpdatedAt = now
	f.scrims[params.ScrimID] = scrim

	if params.IdempotencyKey != "" {
		f.idem[params.CallerUID+"|challenge|"+params.IdempotencyKey] = true
	}
	return scrim, nil
}

func (f *fakeScrimStore) HasIdempotencyKey(_ context.Context, callerUID, operation, clientID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idem[callerUID+"|"+operation+"|"+clientID], nil
}

type fakeTeamStore struct {
	teams   map[string]models.Team
	members map[string]map[string]models.TeamMember
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{
		teams:   make(map[string]models.Team),
		members: make(map[string]map[string]models.TeamMember),
	}
}

func (f *fakeTeamStore) addTeam(team models.Team) {
	f.teams[team.ID] = team
	if f.members[team.ID] == nil {
		f.members[team.ID] = make(map[string]models.TeamMember)
	}
}

func (f *fakeTeamStore) addMember(teamID, uid string, role models.TeamRole) {
	if f.members[teamID] == nil {
		f.members[teamID] = make(map[string]models.TeamMember)
	}
	f.members[teamID][uid] = models.TeamMember{TeamID: teamID, UID: uid, RoleInTeam: role}
}

func (f *fakeTeamStore) GetByID(_ context.Context, id string) (models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return models.Team{}, apperr.New(apperr.NotFound, "team %s not found", id)
	}
	return team, nil
}

func (f *fakeTeamStore) GetMember(_ context.Context, teamID, uid string) (models.TeamMember, error) {
	member, ok := f.members[teamID][uid]
	if !ok {
		return models.TeamMember{}, apperr.New(apperr.NotFound, "%s is not a member of team %s", uid, teamID)
	}
	return member, nil
}

func (f *fakeTeamStore) IsMember(_ context.Context, teamID, uid string) (bool, error) {
	if _, ok := f.members[teamID][uid]; ok {
		return true, nil
	}
	team, ok := f.teams[teamID]
	if !ok {
		return false, nil
	}
	for _, memberID := range team.MemberIDs {
		if memberID == uid {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTeamStore) SetMemberRole(_ context.Context, teamID, uid string, role models.TeamRole) error {
	member, ok := f.members[teamID][uid]
	if !ok {
		return apperr.New(apperr.NotFound, "%s is not a member of team %s", uid, teamID)
	}
	member.RoleInTeam = role
	f.members[teamID][uid] = member
	return nil
}

type fakeUserStatusStore struct {
	users    map[string]models.User
	changes  []repository.StatusChange
	applyErr error
}

func newFakeUserStatusStore() *fakeUserStatusStore {
	return &fakeUserStatusStore{users: make(map[string]models.User)}
}

func (f *fakeUserStatusStore) GetByUID(_ context.Context, uid string) (models.User, error) {
	user, ok := f.users[uid]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "user %s not found", uid)
	}
	return user, nil
}

func (f *fakeUserStatusStore) ApplyStatusChange(_ context.Context, change repository.StatusChange) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	user, ok := f.users[change.TargetUID]
	if !ok {
		return apperr.New(apperr.NotFound, "user %s not found", change.TargetUID)
	}
	user.Disabled = change.Disabled
	if change.Disabled {
		user.BanUntil = change.BanUntil
		user.BanReason = change.Reason
		user.BannedBy = &change.ActorUID
	} else {
		user.BanUntil = nil
		user.BanReason = nil
		user.BannedBy = nil
	}
	f.users[change.TargetUID] = user
	f.changes = append(f.changes, change)
	return nil
}

type fakeProvider struct {
	disabled map[string]bool
	calls    int
	err      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{disabled: make(map[string]bool)}
}

func (f *fakeProvider) Verify(string) (models.Caller, error) {
	return models.Caller{}, apperr.New(apperr.Unauthenticated, "not implemented")
}

func (f *fakeProvider) SetDisabled(_ context.Context, uid string, disabled bool) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.disabled[uid] = disabled
	return nil
}

type fakeSweepStore struct {
	friendRequests []models.FriendRequest
	notifications  []models.Notification
	threadAges     map[string]time.Time
	threadMessages map[string]int
}

func newFakeSweepStore() *fakeSweepStore {
	return &fakeSweepStore{
		threadAges:     make(map[string]time.Time),
		threadMessages: make(map[string]int),
	}
}

func (f *fakeSweepStore) ExpireFriendRequestsBefore(_ context.Context, cutoff time.Time, batchSize int) (int, error) {
	expired := 0
	for i := range f.friendRequests {
		if expired == batchSize {
			break
		}
		fr := &f.friendRequests[i]
		if fr.Status == models.FriendRequestPending && fr.CreatedAt.Before(cutoff) {
			fr.Status = models.FriendRequestExpired
			expired++
		}
	}
	return expired, nil
}

func (f *fakeSweepStore) DeleteReadNotificationsBefore(_ context.Context, cutoff time.Time, batchSize int) (int, error) {
	kept := f.notifications[:0]
	deleted := 0
	for _, n := range f.notifications {
		if deleted < batchSize && n.Read && n.ReadAt != nil && n.ReadAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}

func (f *fakeSweepStore) ListEmptyThreadIDs(_ context.Context, cutoff time.Time, limit int) ([]string, error) {
	var threadIDs []string
	for id, createdAt := range f.threadAges {
		if len(threadIDs) == limit {
			break
		}
		if createdAt.Before(cutoff) && f.threadMessages[id] == 0 {
			threadIDs = append(threadIDs, id)
		}
	}
	return threadIDs, nil
}

func (f *fakeSweepStore) DeleteThreads(_ context.Context, threadIDs []string) error {
	for _, id := range threadIDs {
		delete(f.threadAges, id)
		delete(f.threadMessages, id)
	}
	return nil
}
