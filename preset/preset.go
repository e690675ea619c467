package preset

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xxxsen/common/idgen"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/entity"
	"github.com/xxxsen/ghrelease/kvstore"
	"go.uber.org/zap"
)

const (
	defaultPresetsKey = "github-release-presets"
)

var (
	ErrInvalidPreset  = errors.New("owner and repo are required")
	ErrPresetNotFound = errors.New("preset not found")
)

type IDGenFunc func() uint64

// PresetUpdate carries the fields to change, nil fields are left untouched.
type PresetUpdate struct {
	Name  *string
	Owner *string
	Repo  *string
}

type Service struct {
	kv    kvstore.IKVStore
	idgen IDGenFunc
}

func New(kv kvstore.IKVStore) *Service {
	return NewWithIDGen(kv, idgen.Default().NextId)
}

func NewWithIDGen(kv kvstore.IKVStore, fn IDGenFunc) *Service {
	return &Service{kv: kv, idgen: fn}
}

func (s *Service) Load(ctx context.Context) ([]*entity.Preset, error) {
	rs := make([]*entity.Preset, 0)
	if _, err := kvstore.LoadJSON(ctx, s.kv, defaultPresetsKey, &rs); err != nil {
		if !errors.Is(err, kvstore.ErrDecodeValue) {
			return nil, fmt.Errorf("read presets failed, err:%w", err)
		}
		logutil.GetLogger(ctx).Error("decode presets failed, use empty list", zap.Error(err))
		return []*entity.Preset{}, nil
	}
	out := make([]*entity.Preset, 0, len(rs))
	for _, p := range rs {
		if p == nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Save(ctx context.Context, ps []*entity.Preset) error {
	if ps == nil {
		ps = []*entity.Preset{}
	}
	return kvstore.SaveJSON(ctx, s.kv, defaultPresetsKey, ps)
}

func (s *Service) Add(ctx context.Context, name, owner, repo string) (*entity.Preset, error) {
	p := &entity.Preset{
		ID:    strconv.FormatUint(s.idgen(), 10),
		Name:  strings.TrimSpace(name),
		Owner: strings.TrimSpace(owner),
		Repo:  strings.TrimSpace(repo),
	}
	if len(p.Owner) == 0 || len(p.Repo) == 0 {
		return nil, ErrInvalidPreset
	}
	if len(p.Name) == 0 {
		p.Name = p.Owner + "/" + p.Repo
	}
	ps, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	ps = append(ps, p)
	if err := s.Save(ctx, ps); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("preset added", zap.String("id", p.ID), zap.String("owner", p.Owner), zap.String("repo", p.Repo))
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ps, err := s.Load(ctx)
	if err != nil {
		return err
	}
	out := make([]*entity.Preset, 0, len(ps))
	for _, p := range ps {
		if p.ID == id {
			continue
		}
		out = append(out, p)
	}
	if len(out) == len(ps) {
		return fmt.Errorf("id:%s, err:%w", id, ErrPresetNotFound)
	}
	return s.Save(ctx, out)
}

func (s *Service) Update(ctx context.Context, id string, upd *PresetUpdate) (*entity.Preset, error) {
	ps, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	var hit *entity.Preset
	for _, p := range ps {
		if p.ID == id {
			hit = p
			break
		}
	}
	if hit == nil {
		return nil, fmt.Errorf("id:%s, err:%w", id, ErrPresetNotFound)
	}
	if upd.Name != nil {
		hit.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Owner != nil {
		hit.Owner = strings.TrimSpace(*upd.Owner)
	}
	if upd.Repo != nil {
		hit.Repo = strings.TrimSpace(*upd.Repo)
	}
	if len(hit.Owner) == 0 || len(hit.Repo) == 0 {
		return nil, ErrInvalidPreset
	}
	if err := s.Save(ctx, ps); err != nil {
		return nil, err
	}
	return hit, nil
}

func (s *Service) Find(ctx context.Context, id string) (*entity.Preset, bool, error) {
	ps, err := s.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, true, nil
		}
	}
	return nil, false, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	ps, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(ps), nil
}

func (s *Service) Clear(ctx context.Context) error {
	return s.kv.Del(ctx, defaultPresetsKey)
}
