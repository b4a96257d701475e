// Package ledger ведёт учёт голосов в опросах с одним выбором.
package ledger

import (
	"fmt"
	"time"

	"github.com/UkralStul/feed-engine/internal/domain"
)

// Apply записывает выбор voter в опросе и возвращает новый опрос.
// Повторный голос за тот же вариант ничего не меняет, голос за другой
// вариант переносит выбор. Счётчики не опускаются ниже нуля.
func Apply(poll domain.Poll, voter string, option int, now time.Time) (domain.Poll, error) {
	if option < 0 || option >= len(poll.Options) {
		return poll, fmt.Errorf("option %d of %d: %w", option, len(poll.Options), domain.ErrInvalidOption)
	}
	if poll.Closed(now) {
		return poll, domain.ErrPollClosed
	}

	next := poll.Clone()
	prior, voted := Choice(poll, voter)
	if voted && prior == option {
		next.UserVote = &option
		return next, nil
	}
	if voted {
		next.Votes[prior] = max(next.Votes[prior]-1, 0)
	}
	next.Votes[option]++
	if next.Ballots != nil {
		next.Ballots[voter] = option
	}
	next.UserVote = &option
	return next, nil
}

// Choice возвращает записанный выбор voter. Если журнала голосов нет,
// опрос считается снимком зрителя и выбор берётся из UserVote.
func Choice(poll domain.Poll, voter string) (int, bool) {
	if poll.Ballots != nil {
		opt, ok := poll.Ballots[voter]
		return opt, ok
	}
	if poll.UserVote != nil {
		return *poll.UserVote, true
	}
	return 0, false
}

// Results возвращает голоса по каждому варианту, включая варианты без голосов.
func Results(poll domain.Poll) (counts []int, total int) {
	counts = make([]int, len(poll.Options))
	for i := range counts {
		counts[i] = poll.Votes[i]
		total += counts[i]
	}
	return counts, total
}

// Project готовит опрос к показу viewer: проставляет его выбор и закрытость,
// журнал голосов наружу не отдаётся.
func Project(poll domain.Poll, viewer string, now time.Time) domain.Poll {
	out := poll.Clone()
	out.UserVote = nil
	if viewer != "" {
		if opt, ok := Choice(poll, viewer); ok {
			out.UserVote = &opt
		}
	}
	out.IsFinished = poll.Closed(now)
	out.Ballots = nil
	return out
}
