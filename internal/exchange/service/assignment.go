package service

import (
	"context"
	"errors"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	"giftex/internal/platform/metrics"
	id "giftex/pkg/domain"
	dErrors "giftex/pkg/domain-errors"
)

const minParticipants = 2

// Assign draws a secret-santa derangement for the exchange and persists it.
//
// By default the two most recent assigned rounds of the same name
// contribute forbidden pairs; an explicit exchange list overrides that; an
// empty list disables history checking. Concurrent attempts on the same
// exchange are serialized by a per-exchange lock, so at most one draw
// commits.
func (s *Service) Assign(ctx context.Context, exID id.ExchangeID, spec assign.HistorySpec) (*ExchangeDetail, error) {
	release, err := s.locker.Acquire(ctx, "assign:"+exID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	ex, participants, err := s.loadForAssignment(ctx, exID)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, ex, spec)
	if err != nil {
		return nil, err
	}
	forbidden := assign.ResolveForbidden(spec, ex.ID, ex.Name, history)

	ids := participantIDs(participants)
	start := s.now()
	result, ok := assign.Search(ids, forbidden, s.rng)
	elapsed := s.now().Sub(start)

	if !ok {
		s.metrics.ObserveAssignment(metrics.OutcomeInfeasible, elapsed)
		s.logger.WarnContext(ctx, "assignment infeasible",
			"exchange_id", exID,
			"participants", len(ids),
			"forbidden_pairs", forbidden.Len())
		return nil, dErrors.New(dErrors.CodeInfeasible, "no valid assignment exists under the current history constraints")
	}

	if err := s.persistAssignment(ctx, ex, result); err != nil {
		return nil, err
	}
	s.metrics.ObserveAssignment(metrics.OutcomeAssigned, elapsed)
	s.logger.InfoContext(ctx, "exchange assigned",
		"exchange_id", exID,
		"participants", len(ids),
		"forbidden_pairs", forbidden.Len(),
		"search_ms", elapsed.Milliseconds())

	return s.GetExchangeDetail(ctx, exID)
}

// AssignManual applies an operator-supplied assignment. The proposal must be
// a derangement over exactly the enrolled participants; forbidden pairs from
// history are deliberately not checked.
func (s *Service) AssignManual(ctx context.Context, exID id.ExchangeID, proposed []assign.Pair) (*ExchangeDetail, error) {
	release, err := s.locker.Acquire(ctx, "assign:"+exID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	ex, participants, err := s.loadForAssignment(ctx, exID)
	if err != nil {
		return nil, err
	}

	if err := assign.ValidateManual(participantIDs(participants), proposed); err != nil {
		var ve *assign.ValidationError
		if errors.As(err, &ve) {
			return nil, dErrors.New(dErrors.CodeValidation, "proposed assignment is not valid").
				WithDetails(validationDetails(ve))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate assignment")
	}

	result := make(assign.Assignment, len(proposed))
	for _, p := range proposed {
		result[p.Gifter] = p.Recipient
	}
	if err := s.persistAssignment(ctx, ex, result); err != nil {
		return nil, err
	}
	s.metrics.ObserveAssignment(metrics.OutcomeManual, 0)
	s.logger.InfoContext(ctx, "exchange assigned manually",
		"exchange_id", exID, "participants", len(proposed))

	return s.GetExchangeDetail(ctx, exID)
}

// Close ends an assigned exchange.
func (s *Service) Close(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error) {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, err
	}
	if !assign.CanClose(ex.Status) {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s and cannot be closed", ex.Status)
	}

	ex.Status = assign.StatusClosed
	ex.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateExchange(ctx, ex); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close exchange")
	}
	s.logger.InfoContext(ctx, "exchange closed", "exchange_id", exID)
	return ex, nil
}

// Reopen brings a closed exchange back: to Assigned when any gifter link
// survives, otherwise to Open. Stale gifter links are kept as-is; a fresh
// Assign overwrites them.
func (s *Service) Reopen(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error) {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, err
	}
	if ex.Status != assign.StatusClosed {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s, only closed exchanges can be reopened", ex.Status)
	}

	participants, err := s.store.ListParticipants(ctx, exID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}
	hasAssignments := false
	for _, p := range participants {
		if p.IsAssigned() {
			hasAssignments = true
			break
		}
	}

	ex.Status = assign.Reopen(hasAssignments)
	ex.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateExchange(ctx, ex); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reopen exchange")
	}
	s.logger.InfoContext(ctx, "exchange reopened",
		"exchange_id", exID, "status", ex.Status)
	return ex, nil
}

// Statistics summarizes the exchange for the admin dashboard.
func (s *Service) Statistics(ctx context.Context, exID id.ExchangeID) (*models.Statistics, error) {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, exID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}

	stats := &models.Statistics{
		ExchangeID:        exID,
		Status:            ex.Status,
		TotalParticipants: len(participants),
	}
	for _, p := range participants {
		if p.HasMessage() {
			stats.ParticipantsWithMessages++
		}
		if p.IsAssigned() {
			stats.AssignedParticipants++
		}
	}
	stats.CanAssign = assign.CanAssign(ex.Status) && stats.TotalParticipants >= minParticipants
	stats.ReadyForAssignment = stats.CanAssign && stats.ParticipantsWithMessages == stats.TotalParticipants
	return stats, nil
}

// AssignmentHistory returns the prior rounds default history resolution
// would draw from, with gifter and recipient names resolved for display.
func (s *Service) AssignmentHistory(ctx context.Context, exID id.ExchangeID) ([]models.HistoryRound, error) {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.store.HistorySnapshot(ctx, ex.Name)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	rounds := assign.RecentRounds(ex.ID, ex.Name, snapshot)

	var ids []id.UserID
	for _, round := range rounds {
		for _, p := range round.Pairs {
			ids = append(ids, p.Gifter, p.Recipient)
		}
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user names")
	}

	out := make([]models.HistoryRound, 0, len(rounds))
	for _, round := range rounds {
		hr := models.HistoryRound{
			ExchangeID:  round.ID,
			Date:        round.CreatedAt,
			Assignments: make([]models.HistoryAssignment, 0, len(round.Pairs)),
		}
		for _, p := range round.Pairs {
			hr.Assignments = append(hr.Assignments, models.HistoryAssignment{
				GifterName:    names[p.Gifter],
				RecipientName: names[p.Recipient],
			})
		}
		out = append(out, hr)
	}
	return out, nil
}

// MyAssignments tells the caller who they give to, across exchanges where a
// draw has happened and is still live.
func (s *Service) MyAssignments(ctx context.Context, userID id.UserID) ([]models.MyAssignment, error) {
	recipients, err := s.store.ListByGifter(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignments")
	}

	ids := make([]id.UserID, 0, len(recipients))
	for _, p := range recipients {
		ids = append(ids, p.UserID)
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user names")
	}

	out := make([]models.MyAssignment, 0, len(recipients))
	for _, p := range recipients {
		ex, err := s.getExchange(ctx, p.ExchangeID)
		if err != nil {
			return nil, err
		}
		if ex.Status != assign.StatusAssigned {
			continue
		}
		out = append(out, models.MyAssignment{
			ExchangeID:       ex.ID,
			ExchangeName:     ex.Name,
			ExchangeDate:     ex.Date,
			RecipientName:    names[p.UserID],
			RecipientMessage: p.Message,
		})
	}
	return out, nil
}

// loadForAssignment checks the lifecycle gate and the minimum group size.
func (s *Service) loadForAssignment(ctx context.Context, exID id.ExchangeID) (*models.Exchange, []*models.Participant, error) {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, nil, err
	}
	if !assign.CanAssign(ex.Status) {
		return nil, nil, dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s, assignment requires an open exchange", ex.Status)
	}

	participants, err := s.store.ListParticipants(ctx, exID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}
	if len(participants) < minParticipants {
		return nil, nil, dErrors.Newf(dErrors.CodeValidation, "assignment requires at least %d participants", minParticipants)
	}
	return ex, participants, nil
}

func (s *Service) loadHistory(ctx context.Context, ex *models.Exchange, spec assign.HistorySpec) ([]assign.HistoryExchange, error) {
	if spec.Disabled() {
		return nil, nil
	}
	var (
		history []assign.HistoryExchange
		err     error
	)
	if spec.ExchangeIDs != nil {
		history, err = s.store.HistoryByIDs(ctx, spec.ExchangeIDs)
	} else {
		history, err = s.store.HistorySnapshot(ctx, ex.Name)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	return history, nil
}

// persistAssignment writes every gifter link and the status flip in one
// transaction: a partially assigned exchange is never observable.
func (s *Service) persistAssignment(ctx context.Context, ex *models.Exchange, result assign.Assignment) error {
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		for gifter, recipient := range result {
			if err := s.store.SetGifter(ctx, ex.ID, recipient, gifter); err != nil {
				return err
			}
		}
		ex.Status = assign.StatusAssigned
		ex.UpdatedAt = s.now().UTC()
		return s.store.UpdateExchange(ctx, ex)
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist assignment")
	}
	return nil
}

func participantIDs(participants []*models.Participant) []id.UserID {
	out := make([]id.UserID, len(participants))
	for i, p := range participants {
		out[i] = p.UserID
	}
	return out
}

func validationDetails(ve *assign.ValidationError) map[string]any {
	details := make(map[string]any)
	addGroup := func(key string, ids []id.UserID) {
		if len(ids) == 0 {
			return
		}
		ss := make([]string, len(ids))
		for i, v := range ids {
			ss[i] = v.String()
		}
		details[key] = ss
	}
	addGroup("missing_recipients", ve.MissingRecipients)
	addGroup("extra_recipients", ve.ExtraRecipients)
	addGroup("unknown_gifters", ve.UnknownGifters)
	addGroup("self_pairs", ve.SelfPairs)
	addGroup("duplicate_gifters", ve.DuplicateGifters)
	addGroup("missing_gifters", ve.MissingGifters)
	return details
}
