package domain

// NotificationPrefs are per-user settings.
type NotificationPrefs struct {
	EmailProductInsights bool   `json:"emailProductInsights"`
	EmailWeeklyDigest    bool   `json:"emailWeeklyDigest"`
	EmailSecurityAlerts  bool   `json:"emailSecurityAlerts"`
	DefaultSource        Source `json:"defaultSource"`
	AutoSaveAnalyses     bool   `json:"autoSaveAnalyses"`
}

// DefaultPrefs applies to users who never saved settings.
func DefaultPrefs() NotificationPrefs {
	return NotificationPrefs{
		EmailProductInsights: true,
		EmailWeeklyDigest:    false,
		EmailSecurityAlerts:  true,
		DefaultSource:        SourceManual,
		AutoSaveAnalyses:     true,
	}
}

// SettingsUser is the identity block of the settings view.
type SettingsUser struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Settings is the response of the settings view.
type Settings struct {
	User  SettingsUser      `json:"user"`
	Prefs NotificationPrefs `json:"prefs"`
}
