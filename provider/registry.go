package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type registryOptions struct {
	builtins func(r *Registry)
}

type RegistryOption func(*registryOptions)

// WithBuiltins 設定第一次使用時才註冊的內建平台
func WithBuiltins(fn func(r *Registry)) RegistryOption {
	return func(o *registryOptions) {
		o.builtins = fn
	}
}

// Registry 保存平台名稱到建構函式的對應，可併發使用
type Registry struct {
	once    sync.Once
	mu      sync.RWMutex
	ctors   map[string]Constructor
	deps    Deps
	options registryOptions
}

func NewRegistry(deps Deps, opts ...RegistryOption) *Registry {
	var options registryOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Registry{
		ctors:   make(map[string]Constructor),
		deps:    deps,
		options: options,
	}
}

func (r *Registry) ensureInit() {
	r.once.Do(func() {
		if r.options.builtins != nil {
			r.options.builtins(r)
		}
	})
}

// Register 以相同名稱註冊會覆蓋先前的建構函式
func (r *Registry) Register(name string, ctor Constructor) {
	r.ensureInit()
	r.register(name, ctor)
}

// register 供內建平台在初始化期間使用，避免重入 once
func (r *Registry) register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// RegisterBuiltin 只能在 WithBuiltins 的函式中呼叫
func (r *Registry) RegisterBuiltin(name string, ctor Constructor) {
	r.register(name, ctor)
}

// Get 每次都建立新的實例，設定不完整時回傳 ErrConfigInvalid
func (r *Registry) Get(name string, cfg Config) (IProvider, error) {
	const op = "provider.Registry.Get"

	r.ensureInit()
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("[%s] %w: %s", op, ErrUnknownProvider, name)
	}

	p := ctor(cfg, r.deps)
	if !p.ValidateConfig() {
		return nil, fmt.Errorf("[%s] %w: %s", op, ErrConfigInvalid, name)
	}
	return p, nil
}

// Names 回傳已註冊的平台名稱，依字母排序
func (r *Registry) Names() []string {
	r.ensureInit()
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Authorize 回傳導向平台授權頁的網址
func (r *Registry) Authorize(ctx context.Context, name string, cfg Config) (string, error) {
	const op = "provider.Registry.Authorize"

	p, err := r.Get(name, cfg)
	if err != nil {
		return "", err
	}
	url, err := p.AuthURL(ctx)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to build auth url, provider=%s, err=%w", op, name, err)
	}
	return url, nil
}
