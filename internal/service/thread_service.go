package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/domain"
	"github.com/threadpost/threadpost-backend/internal/repository"
	"github.com/threadpost/threadpost-backend/pkg/logger"
)

// ThreadService reconstructs nested reply trees. Descendants are collected
// level by level with one batch query per level, never one query per
// message, then grouped in memory.
type ThreadService struct {
	messages repository.MessageRepository
	maxDepth int
}

// NewThreadService creates a new ThreadService
func NewThreadService(messages repository.MessageRepository, maxDepth int) *ThreadService {
	return &ThreadService{messages: messages, maxDepth: maxDepth}
}

// Assemble walks up to the thread root of the given message, collects all
// replies below it and returns the assembled forest. Children are ordered
// by ascending creation time. An inconsistent input set can legitimately
// produce more than one root; that is logged, not treated as fatal.
func (s *ThreadService) Assemble(messageID uint64) (*domain.ThreadResponse, error) {
	root, err := s.rootOf(messageID)
	if err != nil {
		return nil, err
	}

	all := []*domain.Message{root}
	frontier := []uint64{root.ID}
	for depth := 0; depth < s.maxDepth && len(frontier) > 0; depth++ {
		level, err := s.messages.FindByParentIDs(frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, msg := range level {
			all = append(all, msg)
			frontier = append(frontier, msg.ID)
		}
	}

	return s.assemble(all), nil
}

// assemble groups a flat message set bottom-up under their parent keys.
func (s *ThreadService) assemble(messages []*domain.Message) *domain.ThreadResponse {
	nodes := make(map[uint64]*domain.ThreadNode, len(messages))
	for _, msg := range messages {
		nodes[msg.ID] = &domain.ThreadNode{
			Message: msg.ToResponse(),
			Replies: []*domain.ThreadNode{},
		}
	}

	var roots []*domain.ThreadNode
	for _, msg := range messages {
		node := nodes[msg.ID]
		if msg.ParentID != nil {
			if parent, ok := nodes[*msg.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	if len(roots) > 1 {
		logger.GetLogger().Warn().
			Int("roots", len(roots)).
			Int("messages", len(messages)).
			Msg("thread assembly produced multiple roots from inconsistent set")
	}
	return &domain.ThreadResponse{Roots: roots}
}

func (s *ThreadService) rootOf(id uint64) (*domain.Message, error) {
	current, err := s.find(id)
	if err != nil {
		return nil, err
	}
	for depth := 0; depth < s.maxDepth; depth++ {
		if current.ParentID == nil {
			return current, nil
		}
		current, err = s.find(*current.ParentID)
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: message %d", common.ErrCycle, id)
}

func (s *ThreadService) find(id uint64) (*domain.Message, error) {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: message %d", common.ErrNotFound, id)
		}
		return nil, err
	}
	return msg, nil
}
