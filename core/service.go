package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termprof/internal/barrier"
	"pkt.systems/termprof/internal/logx"
	"pkt.systems/termprof/internal/throttle"
	"pkt.systems/termprof/schema"
)

// service implements the profile cache behavior.
type service struct {
	cfg       schema.ServiceConfig
	local     ProfileSource
	remote    ProfileSource
	remoteEnv RemoteEnvironmentProvider
	config    ConfigurationStore
	contrib   ContributionRegistry
	sink      EventSink
	hooks     RefreshHooks
	logger    pslog.Logger

	ready      *barrier.Gate
	readyTimer *time.Timer
	refresh    *throttle.Trailing

	mu           sync.Mutex
	started      bool
	profiles     []schema.Profile
	contributed  []schema.ContributedProfile
	platform     schema.PlatformKey
	defaultName  schema.ProfileName
	haveDefault  bool
	firstAttempt bool
	providers    map[providerKey]*registration
	unsubs       []func()
}

// NewService constructs the profile service. The configuration store
// is required; all other dependencies are optional. Call Start exactly
// once before use.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Config == nil {
		return nil, errors.New("configuration store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &service{
		cfg:          cfg,
		local:        deps.Local,
		remote:       deps.Remote,
		remoteEnv:    deps.RemoteEnv,
		config:       deps.Config,
		contrib:      deps.Contributions,
		sink:         deps.EventSink,
		hooks:        deps.Hooks,
		logger:       logger,
		ready:        barrier.New(0),
		platform:     cfg.Platform,
		firstAttempt: true,
		providers:    make(map[providerKey]*registration),
	}
	s.refresh = throttle.New(cfg.RefreshInterval, func() {
		if err := s.refreshNow(context.Background()); err != nil {
			s.logger.Warn("profile refresh failed", "err", err)
		}
	})
	return s, nil
}

// Start performs the initial refresh and arms subscriptions and the
// readiness deadline.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("profile service already started")
	}
	s.started = true
	s.mu.Unlock()

	if s.cfg.ReadyTimeout > 0 {
		s.readyTimer = time.AfterFunc(s.cfg.ReadyTimeout, s.ready.Open)
	}
	unsubs := []func(){s.config.Subscribe(s.refresh.Trigger)}
	if s.contrib != nil {
		unsubs = append(unsubs, s.contrib.Subscribe(s.refresh.Trigger))
	}
	s.mu.Lock()
	s.unsubs = unsubs
	s.mu.Unlock()

	return s.RefreshAvailableProfiles(ctx)
}

// Close cancels subscriptions and pending trailing refreshes.
func (s *service) Close() error {
	s.refresh.Stop()
	if s.readyTimer != nil {
		s.readyTimer.Stop()
	}
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
	return nil
}

func (s *service) RefreshAvailableProfiles(ctx context.Context) error {
	run, done := s.refresh.Enter()
	if !run {
		return nil
	}
	defer done()
	return s.refreshNow(ctx)
}

func (s *service) AvailableProfiles() []schema.Profile {
	s.refresh.Trigger()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.Profile(nil), s.profiles...)
}

func (s *service) ContributedProfiles() []schema.ContributedProfile {
	s.refresh.Trigger()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.ContributedProfile(nil), s.contributed...)
}

func (s *service) DefaultProfileName() (schema.ProfileName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveDefault {
		return "", schema.ErrNoDefaultProfile
	}
	return s.defaultName, nil
}

func (s *service) ContributedDefaultProfile(ctx context.Context, launch schema.LaunchConfig) (*schema.ContributedProfile, error) {
	if launch.Executable != "" || launch.ParentTerminalID != "" {
		return nil, nil
	}
	s.mu.Lock()
	platform := s.platform
	contributed := append([]schema.ContributedProfile(nil), s.contributed...)
	s.mu.Unlock()

	name, err := s.config.DefaultProfileName(platform)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	for _, c := range contributed {
		if c.Title == name {
			match := c
			return &match, nil
		}
	}
	return nil, nil
}

func (s *service) RegisterContributedProfile(ctx context.Context, extension schema.ExtensionID, provider schema.ProviderID, title schema.ProfileName, options ContributedProfileOptions) error {
	if extension == "" {
		return schema.ErrInvalidExtension
	}
	if provider == "" {
		return schema.ErrInvalidProvider
	}
	if title == "" {
		return schema.ErrInvalidProfileTitle
	}
	entry := schema.ProfileConfig{
		Extension: extension,
		Provider:  provider,
		Icon:      options.Icon,
		Color:     options.Color,
	}
	log := logx.WithProvider(s.logger, extension, provider)
	log.Debug("contributed profile persisted", "title", title)
	return s.config.WriteProfile(s.Platform(), string(title), entry)
}

func (s *service) ProfilesReady() <-chan struct{} {
	return s.ready.Wait()
}

func (s *service) Platform() schema.PlatformKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform
}

// refreshNow performs one full detection pass and commits the result.
func (s *service) refreshNow(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	platform, source, err := s.resolvePrimary(ctx)
	if err != nil {
		return err
	}
	log := logx.WithPlatform(s.logger, platform)

	configured, err := s.config.Profiles(platform)
	if err != nil {
		return err
	}
	configuredDefault, err := s.config.DefaultProfileName(platform)
	if err != nil {
		return err
	}

	var detected []schema.Profile
	if source == nil {
		// No primary backend: retain the previous detected list.
		s.mu.Lock()
		detected = append([]schema.Profile(nil), s.profiles...)
		s.mu.Unlock()
	} else {
		req := DetectRequest{
			Platform:           platform,
			ConfiguredProfiles: configured,
			DefaultProfileName: configuredDefault,
			IncludeDetected:    s.cfg.IncludeDetected,
		}
		detected, err = source.DetectProfiles(ctx, req)
		if err != nil {
			return err
		}
		if first := s.consumeFirstAttempt(); first && len(detected) == 0 {
			log.Debug("profile detection empty on first attempt, retrying once")
			detected, err = source.DetectProfiles(ctx, req)
			if err != nil {
				return err
			}
		}
	}

	contributed := filterContributed(s.contributionList(), configured)
	s.commit(platform, detected, contributed, configuredDefault, log)
	return nil
}

// resolvePrimary selects the backend for detection. Remote takes
// priority when configured; the platform key follows the remote
// environment when one is connected.
func (s *service) resolvePrimary(ctx context.Context) (schema.PlatformKey, ProfileSource, error) {
	platform := s.cfg.Platform
	if s.remote != nil {
		if s.remoteEnv != nil {
			env, err := s.remoteEnv.Environment(ctx)
			if err != nil {
				return "", nil, err
			}
			if env == nil {
				return platform, s.local, nil
			}
			if env.OS != "" {
				platform = env.OS
			}
		}
		return platform, s.remote, nil
	}
	return platform, s.local, nil
}

func (s *service) consumeFirstAttempt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.firstAttempt
	s.firstAttempt = false
	return first
}

func (s *service) contributionList() []schema.ContributedProfile {
	if s.contrib == nil {
		return nil
	}
	return s.contrib.ContributedProfiles()
}

// filterContributed drops registry entries whose title is explicitly
// nulled out in configuration.
func filterContributed(list []schema.ContributedProfile, configured map[string]*schema.ProfileConfig) []schema.ContributedProfile {
	if len(list) == 0 {
		return nil
	}
	kept := make([]schema.ContributedProfile, 0, len(list))
	for _, c := range list {
		if entry, ok := configured[string(c.Title)]; ok && entry == nil {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// commit swaps in the new snapshot when it differs structurally, fires
// the change notification, and opens the readiness gate. The snapshot
// is built outside the lock and swapped atomically; listeners reading
// cache state inside the callback observe the new snapshot.
func (s *service) commit(platform schema.PlatformKey, detected []schema.Profile, contributed []schema.ContributedProfile, configuredDefault schema.ProfileName, log pslog.Logger) {
	s.mu.Lock()
	changed := !schema.ProfilesEqual(s.profiles, detected) ||
		!schema.ContributedProfilesEqual(s.contributed, contributed)
	if changed {
		s.profiles = detected
		s.contributed = contributed
	}
	s.platform = platform
	defaultName := configuredDefault
	if defaultName == "" {
		for _, p := range detected {
			if p.Default {
				defaultName = p.Name
				break
			}
		}
	}
	if defaultName != "" {
		s.defaultName = defaultName
		s.haveDefault = true
	}
	resolvedDefault := s.defaultName
	webVisible := s.cfg.WebHost && len(contributed) > 0
	var event schema.ProfilesChangedEvent
	if changed {
		event = schema.ProfilesChangedEvent{
			Platform:       platform,
			Profiles:       append([]schema.Profile(nil), detected...),
			Contributed:    append([]schema.ContributedProfile(nil), contributed...),
			DefaultProfile: resolvedDefault,
		}
	}
	s.mu.Unlock()

	if changed {
		log.Info("profiles changed", "profiles", len(detected), "contributed", len(contributed), "default", resolvedDefault)
		if s.sink != nil {
			s.sink.OnProfilesChanged(event)
		}
		if s.hooks.WebContext != nil {
			s.hooks.WebContext(webVisible)
		}
		if s.hooks.ConfigSchema != nil {
			s.hooks.ConfigSchema(resolvedDefault, platform)
		}
		if s.hooks.ActionList != nil {
			s.hooks.ActionList()
		}
	} else {
		log.Debug("profiles unchanged")
	}
	// Readiness signals "a refresh has completed", not "profiles
	// changed"; the gate opens on the first completed cycle.
	s.ready.Open()
}
