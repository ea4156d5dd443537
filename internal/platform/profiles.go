package platform

// Listing categories in display order.
const (
	CategoryMainWestern  = "Main Western"
	CategoryVideo        = "Video Platforms"
	CategoryProfessional = "Professional"
	CategoryAlternative  = "Alternative"
	CategoryAsian        = "Asian Platforms"
	CategoryIndian       = "Indian Platforms"
	CategoryRegional     = "Other/Regional"
	CategoryLive         = "Streaming/Live"
	CategoryDiscontinued = "Discontinued"
)

// Support statuses shown in the listing.
const (
	StatusFull         = "Full"
	StatusGood         = "Good"
	StatusLimited      = "Limited"
	StatusAuth         = "Auth"
	StatusLiveOnly     = "Live Only"
	StatusVeryLimited  = "Very Limited"
	StatusDirectLinks  = "Direct Links"
	StatusDiscontinued = "Discontinued"
	StatusDRM          = "DRM Protected"
	StatusToolOnly     = "Tool Only"
	StatusBestEffort   = "Best Effort"
)

const mergeFormatMP4 = "mp4"

//nolint:gochecknoglobals // Immutable listing order.
var categoryOrder = []string{
	CategoryMainWestern,
	CategoryVideo,
	CategoryProfessional,
	CategoryAlternative,
	CategoryAsian,
	CategoryIndian,
	CategoryRegional,
	CategoryLive,
	CategoryDiscontinued,
}

//nolint:gochecknoglobals // Immutable hint texts shared by several profiles.
var (
	genericFailureHint = []string{
		"Content may be private or restricted",
		"Platform may require authentication (try --cookies)",
		"Content may not be available, try updating yt-dlp",
	}

	geoFailureHint = []string{
		"Content may be geo-restricted in your region",
		"Some videos require a regional account (try --cookies)",
	}

	indianFailureHint = []string{
		"This platform often needs app-specific APIs",
		"Generic extraction may not find the video, the content may need a manual download",
	}

	liveFailureHint = []string{
		"Only live streams and recent broadcasts are available",
		"The stream may have ended or not started yet",
	}
)

// genericLadder maps the common quality names to plain height-limited selectors.
func genericLadder() map[string]string {
	return map[string]string{
		QualityBest:  "best",
		QualityWorst: "worst",
		QualityAudio: "bestaudio",
		"1080p":      "best[height<=1080]",
		"720p":       "best[height<=720]",
		"480p":       "best[height<=480]",
		"360p":       "best[height<=360]",
	}
}

// withOverrides returns the generic ladder with some entries replaced.
func withOverrides(overrides map[string]string) map[string]string {
	ladder := genericLadder()
	for k, v := range overrides {
		ladder[k] = v
	}

	return ladder
}

func instagramLadder() map[string]string {
	return map[string]string{
		QualityBest:  "best[ext=mp4]/best",
		QualityWorst: "worst[ext=mp4]/worst",
		QualityAudio: "bestaudio",
		"medium":     "best[height<=720][ext=mp4]/best[height<=720]/best",
		"1080p":      "best[height<=1080][ext=mp4]/best[height<=1080]/best",
		"720p":       "best[height<=720][ext=mp4]/best[height<=720]/best",
		"480p":       "best[height<=480][ext=mp4]/best[height<=480]/best",
		"360p":       "best[height<=360][ext=mp4]/best[height<=360]/best",
	}
}

func capped720Ladder() map[string]string {
	return withOverrides(map[string]string{
		QualityBest: "best[height<=720]/best",
		"1080p":     "best[height<=720]/best",
	})
}

// extract builds a profile handled by the external tool with common defaults.
func extract(id ID, name, category, status string, domains ...string) *Profile {
	return &Profile{
		ID:                id,
		Name:              name,
		Category:          category,
		Status:            status,
		Domains:           domains,
		Ladder:            genericLadder(),
		DefaultSelector:   "best",
		SupportsThumbnail: true,
		Kind:              KindExtract,
		FailureHint:       genericFailureHint,
	}
}

func unavailable(id ID, name, status, notice, alternative string, domains ...string) *Profile {
	return &Profile{
		ID:          id,
		Name:        name,
		Category:    CategoryDiscontinued,
		Status:      status,
		Domains:     domains,
		Kind:        KindUnavailable,
		Notice:      notice,
		Alternative: alternative,
	}
}

// defaultProfiles returns the built-in table in classification order.
// The first profile whose fragment matches wins, so specific hosts come first.
//
//nolint:funlen // The table is long by nature.
func defaultProfiles() []*Profile {
	youtube := extract("youtube", "YouTube", CategoryMainWestern, StatusFull, "youtube.com", "youtu.be")
	youtube.Ladder = withOverrides(map[string]string{QualityBest: "best[height<=1080]"})
	youtube.MergeFormat = mergeFormatMP4
	youtube.SupportsPlaylist = true
	youtube.LoginURL = "https://accounts.google.com/ServiceLogin?service=youtube"

	instagram := extract("instagram", "Instagram", CategoryMainWestern, StatusFull, "instagram.com")
	instagram.Ladder = instagramLadder()
	instagram.DefaultSelector = "best[ext=mp4]/best"
	instagram.FailureHint = []string{
		"Some Instagram content may be private or require login",
		"Export cookies with 'mediagrab auth login instagram' and retry",
	}
	instagram.LoginURL = "https://www.instagram.com/accounts/login/"

	twitter := extract("twitter", "Twitter/X", CategoryMainWestern, StatusFull, "twitter.com", "x.com")
	twitter.LoginURL = "https://x.com/i/flow/login"

	tiktok := extract("tiktok", "TikTok", CategoryMainWestern, StatusFull, "tiktok.com")
	tiktok.LoginURL = "https://www.tiktok.com/login"

	facebook := extract("facebook", "Facebook", CategoryMainWestern, StatusFull, "facebook.com", "fb.com", "fb.watch")
	facebook.LoginURL = "https://www.facebook.com/login"

	vimeo := extract("vimeo", "Vimeo", CategoryVideo, StatusFull, "vimeo.com")
	vimeo.Ladder = withOverrides(map[string]string{QualityBest: "best[height<=1080]/best"})
	vimeo.DefaultSelector = "best[height<=720]/best"
	vimeo.MergeFormat = mergeFormatMP4
	vimeo.SupportsPlaylist = true
	vimeo.LoginURL = "https://vimeo.com/log_in"

	dailymotion := extract("dailymotion", "Dailymotion", CategoryVideo, StatusFull, "dailymotion.com", "dai.ly")
	dailymotion.SupportsPlaylist = true

	twitch := extract("twitch", "Twitch", CategoryVideo, StatusFull, "twitch.tv")
	twitch.SupportsPlaylist = true
	twitch.LoginURL = "https://www.twitch.tv/login"

	reddit := extract("reddit", "Reddit", CategoryVideo, StatusFull, "reddit.com", "redd.it")
	reddit.LoginURL = "https://www.reddit.com/login"

	linkedin := extract("linkedin", "LinkedIn", CategoryProfessional, StatusAuth, "linkedin.com", "lnkd.in")
	linkedin.Ladder = capped720Ladder()
	linkedin.DefaultSelector = "best[height<=720]/best"
	linkedin.FailureHint = []string{
		"LinkedIn content often requires authentication",
		"Try using --cookies or 'mediagrab auth login linkedin'",
	}
	linkedin.LoginURL = "https://www.linkedin.com/login"

	pinterest := extract("pinterest", "Pinterest", CategoryProfessional, StatusLimited, "pinterest.com", "pin.it")
	pinterest.Ladder = capped720Ladder()
	pinterest.DefaultSelector = "best[height<=720]/best"
	pinterest.LoginURL = "https://www.pinterest.com/login/"

	rumble := extract("rumble", "Rumble", CategoryAlternative, StatusFull, "rumble.com")
	rumble.SupportsPlaylist = true

	odysee := extract("odysee", "Odysee", CategoryAlternative, StatusFull, "odysee.com", "lbry.tv")
	odysee.SupportsPlaylist = true

	bitchute := extract("bitchute", "BitChute", CategoryAlternative, StatusFull, "bitchute.com")

	peertube := extract("peertube", "PeerTube", CategoryAlternative, StatusFull, "peertube", "tube.")
	peertube.SupportsPlaylist = true

	triller := extract("triller", "Triller", CategoryAlternative, StatusLimited, "triller.co")
	likee := extract("likee", "Likee", CategoryAlternative, StatusLimited, "likee.video", "likee.com")

	bilibili := extract("bilibili", "Bilibili", CategoryAsian, StatusGood, "bilibili.com", "b23.tv")
	bilibili.SupportsPlaylist = true
	bilibili.LoginURL = "https://passport.bilibili.com/login"

	niconico := extract("niconico", "Niconico", CategoryAsian, StatusGood, "nicovideo.jp", "nico.ms")
	niconico.SupportsPlaylist = true
	niconico.LoginURL = "https://account.nicovideo.jp/login"

	geoRestricted := []*Profile{
		bilibili,
		extract("youku", "Youku", CategoryAsian, StatusGood, "youku.com"),
		extract("kuaishou", "Kuaishou", CategoryAsian, StatusLimited, "kuaishou.com"),
		extract("weibo", "Weibo", CategoryAsian, StatusLimited, "weibo.com"),
		extract("douyin", "Douyin", CategoryAsian, StatusLimited, "douyin.com"),
	}
	for _, p := range geoRestricted {
		p.SupportsGeoBypass = true
		p.FailureHint = geoFailureHint
	}

	indian := []*Profile{
		extract("mxtakatak", "MX TakaTak", CategoryIndian, StatusLimited, "mxtakatak.com", "takatak.tv"),
		extract("moj", "Moj", CategoryIndian, StatusLimited, "moj.tv", "mojapp.in"),
		extract("chingari", "Chingari", CategoryIndian, StatusLimited, "chingari.io"),
		extract("josh", "Josh", CategoryIndian, StatusLimited, "josh.in"),
	}
	for _, p := range indian {
		p.FailureHint = indianFailureHint
	}

	vk := extract("vk", "VK Video", CategoryRegional, StatusLimited, "vk.com", "vkvideo.ru", "vkontakte")
	vk.SupportsPlaylist = true
	vk.LoginURL = "https://vk.com/login"

	metacafe := extract("metacafe", "Metacafe", CategoryRegional, StatusLimited, "metacafe.com")
	veoh := extract("veoh", "Veoh", CategoryRegional, StatusLimited, "veoh.com")
	dtube := extract("dtube", "DTube", CategoryRegional, StatusLimited, "d.tube", "dtube")

	younow := extract("younow", "YouNow", CategoryLive, StatusLiveOnly, "younow.com")
	younow.FailureHint = liveFailureHint

	trovo := extract("trovo", "Trovo", CategoryLive, StatusLiveOnly, "trovo.live")
	trovo.FailureHint = liveFailureHint

	snapchat := extract("snapchat", "Snapchat", CategoryLive, StatusVeryLimited, "snapchat.com", "snap.com")
	snapchat.FailureHint = []string{
		"Snapchat support in yt-dlp is very limited",
		"Use Snapchat's web interface for public stories",
	}

	discord := &Profile{
		ID:              "discord",
		Name:            "Discord",
		Category:        CategoryLive,
		Status:          StatusDirectLinks,
		Domains:         []string{"cdn.discordapp.com", "media.discordapp.net"},
		Kind:            KindDirect,
		AllowedHosts:    []string{"cdn.discordapp.com", "media.discordapp.net"},
		PlaceholderName: "discord_attachment",
		FailureHint: []string{
			"Attachment links expire, copy a fresh link from the Discord client",
		},
	}

	profiles := []*Profile{
		youtube, instagram, twitter, tiktok, facebook,
		vimeo, dailymotion, twitch, reddit,
		linkedin, pinterest,
		rumble, odysee, bitchute, peertube, triller, likee,
	}

	profiles = append(profiles, geoRestricted[0], niconico)
	profiles = append(profiles, geoRestricted[1:]...)
	profiles = append(profiles, indian...)
	profiles = append(profiles,
		vk, metacafe, veoh, dtube,
		younow, trovo, snapchat, discord,
		unavailable("periscope", "Periscope", StatusDiscontinued,
			"Periscope was discontinued in 2021",
			"Try Twitter live streams instead",
			"periscope.tv", "pscp.tv"),
		unavailable("zynn", "Zynn", StatusDiscontinued,
			"Zynn was removed from app stores",
			"Content may be on TikTok or Instagram",
			"zynn"),
		unavailable("tubi", "Tubi", StatusDRM,
			"Tubi has DRM protection",
			"Streaming service content cannot be downloaded",
			"tubi.tv", "tubitv.com"),
		unavailable("streamyard", "StreamYard", StatusToolOnly,
			"StreamYard is a streaming tool, not a content platform",
			"Find the destination platform (YouTube, Facebook, etc.)",
			"streamyard.com"),
	)

	return profiles
}

// genericProfile is used for URLs that match no platform.
func genericProfile() *Profile {
	p := extract(Unknown, "Unknown", "", StatusBestEffort)
	p.Domains = nil

	return p
}
