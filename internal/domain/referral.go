package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxReferralDepth bounds how many ancestors a new user is linked into.
const MaxReferralDepth = 3

// ReferralStage is the position of a referred user relative to the owner of the sequence.
type ReferralStage int

const (
	StageDirect ReferralStage = 1
	StageSecond ReferralStage = 2
	StageThird  ReferralStage = 3
)

func (s ReferralStage) String() string {
	switch s {
	case StageDirect:
		return "direct"
	case StageSecond:
		return "stage2"
	case StageThird:
		return "stage3"
	}
	return "unknown"
}

func (s ReferralStage) Valid() bool {
	return s >= StageDirect && s <= MaxReferralDepth
}

type ReferralEntry struct {
	OwnerID   uuid.UUID           `db:"owner_id" json:"-"`
	Stage     ReferralStage       `db:"stage" json:"-"`
	UserID    uuid.UUID           `db:"referred_user_id" json:"user"`
	Name      string              `db:"name" json:"name"`
	History   []ReferralIncentive `db:"-" json:"history"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// Referrals are the three per-owner referral sequences.
type Referrals struct {
	Direct []ReferralEntry `json:"directReferral"`
	Stage2 []ReferralEntry `json:"stage2Referral"`
	Stage3 []ReferralEntry `json:"stage3Referral"`
}

func (r *Referrals) sequence(stage ReferralStage) *[]ReferralEntry {
	switch stage {
	case StageDirect:
		return &r.Direct
	case StageSecond:
		return &r.Stage2
	case StageThird:
		return &r.Stage3
	}
	return nil
}

func (r *Referrals) Entries(stage ReferralStage) []ReferralEntry {
	seq := r.sequence(stage)
	if seq == nil {
		return nil
	}
	return *seq
}

func (r *Referrals) Contains(stage ReferralStage, userID uuid.UUID) bool {
	for _, e := range r.Entries(stage) {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

// Add appends entry to the sequence of its stage unless the user is already there.
func (r *Referrals) Add(entry ReferralEntry) bool {
	seq := r.sequence(entry.Stage)
	if seq == nil || r.Contains(entry.Stage, entry.UserID) {
		return false
	}
	if entry.History == nil {
		entry.History = []ReferralIncentive{}
	}
	*seq = append(*seq, entry)
	return true
}

// GroupReferrals builds the sequences from flat rows, keeping row order and dropping duplicates.
func GroupReferrals(entries []ReferralEntry) Referrals {
	r := Referrals{
		Direct: []ReferralEntry{},
		Stage2: []ReferralEntry{},
		Stage3: []ReferralEntry{},
	}
	for _, e := range entries {
		r.Add(e)
	}
	return r
}

// AttachIncentives distributes incentive history rows onto the matching entries.
func (r *Referrals) AttachIncentives(incentives []ReferralIncentive) {
	for _, inc := range incentives {
		seq := r.sequence(inc.Stage)
		if seq == nil {
			continue
		}
		for i := range *seq {
			if (*seq)[i].UserID == inc.ReferredUserID {
				(*seq)[i].History = append((*seq)[i].History, inc)
				break
			}
		}
	}
}
