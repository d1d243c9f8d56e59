package locale

// Message key constants for localization
// All user-facing messages should use these constants to ensure consistency

const (
	// ============================================================================
	// BUTTONS
	// ============================================================================

	ButtonBotSettings     = "ButtonBotSettings"
	ButtonGenerateStatus  = "ButtonGenerateStatus"
	ButtonStartText       = "ButtonStartText"
	ButtonForceText       = "ButtonForceText"
	ButtonProtectContent  = "ButtonProtectContent"
	ButtonAdmins          = "ButtonAdmins"
	ButtonRequiredChats   = "ButtonRequiredChats"
	ButtonClose           = "ButtonClose"
	ButtonBack            = "ButtonBack"
	ButtonChange          = "ButtonChange"
	ButtonSet             = "ButtonSet"
	ButtonAdd             = "ButtonAdd"
	ButtonDelete          = "ButtonDelete"
	ButtonCancel          = "ButtonCancel"
	ButtonRefresh         = "ButtonRefresh"
	ButtonContact         = "ButtonContact"
	ButtonShare           = "ButtonShare"
	ButtonTryAgain        = "ButtonTryAgain"
	ButtonJoinChat        = "ButtonJoinChat"
	ButtonArchiveChannel  = "ButtonArchiveChannel"
	ChatKindGroupLabel    = "ChatKindGroupLabel"
	ChatKindChannelLabel  = "ChatKindChannelLabel"
	BoolTrue              = "BoolTrue"
	BoolFalse             = "BoolFalse"
	CallbackNotAuthorized = "CallbackNotAuthorized"

	// ============================================================================
	// SETTINGS MENU
	// ============================================================================

	SettingsTitle          = "SettingsTitle"
	SettingsGenerateStatus = "SettingsGenerateStatus"
	SettingsProtectStatus  = "SettingsProtectStatus"
	SettingsStartText      = "SettingsStartText"
	SettingsForceText      = "SettingsForceText"
	SettingsAdminsTitle    = "SettingsAdminsTitle"
	SettingsChatsTitle     = "SettingsChatsTitle"
	SettingsListItem       = "SettingsListItem"
	SettingsListEmpty      = "SettingsListEmpty"

	SettingsGenerateChanged  = "SettingsGenerateChanged"
	SettingsProtectChanged   = "SettingsProtectChanged"
	SettingsStartTextUpdated = "SettingsStartTextUpdated"
	SettingsForceTextUpdated = "SettingsForceTextUpdated"

	SettingsAdminAdded   = "SettingsAdminAdded"
	SettingsChatAdded    = "SettingsChatAdded"
	SettingsAdminDeleted = "SettingsAdminDeleted"
	SettingsChatDeleted  = "SettingsChatDeleted"

	SettingsAlreadyAdded   = "SettingsAlreadyAdded"
	SettingsNotValid       = "SettingsNotValid"
	SettingsNotFound       = "SettingsNotFound"
	SettingsNoRightsSelf   = "SettingsNoRightsSelf"
	SettingsNoRightsOwner  = "SettingsNoRightsOwner"
	SettingsEntityUserID   = "SettingsEntityUserID"
	SettingsEntityChatID   = "SettingsEntityChatID"
	SettingsInvalidEntryID = "SettingsInvalidEntryID"

	// ============================================================================
	// PROMPTS
	// ============================================================================

	PromptStartText    = "PromptStartText"
	PromptForceText    = "PromptForceText"
	PromptAddAdmin     = "PromptAddAdmin"
	PromptDeleteAdmin  = "PromptDeleteAdmin"
	PromptAddChat      = "PromptAddChat"
	PromptDeleteChat   = "PromptDeleteChat"
	PromptCancelled    = "PromptCancelled"
	PromptTimedOut     = "PromptTimedOut"
	PromptTextRequired = "PromptTextRequired"

	// ============================================================================
	// LINKS
	// ============================================================================

	BatchAskFirst       = "BatchAskFirst"
	BatchAskLast        = "BatchAskLast"
	BatchInvalidForward = "BatchInvalidForward"

	// ============================================================================
	// BROADCAST
	// ============================================================================

	BroadcastStarted       = "BroadcastStarted"
	BroadcastAlreadyActive = "BroadcastAlreadyActive"
	BroadcastProgress      = "BroadcastProgress"
	BroadcastFinished      = "BroadcastFinished"
	BroadcastStopped       = "BroadcastStopped"
	BroadcastReplyRequired = "BroadcastReplyRequired"
	BroadcastNotRunning    = "BroadcastNotRunning"
	BroadcastStopAccepted  = "BroadcastStopAccepted"

	// ============================================================================
	// STATS AND SERVICE
	// ============================================================================

	UsersCounting = "UsersCounting"
	UsersStats    = "UsersStats"
	PingLatency   = "PingLatency"
	UptimeText    = "UptimeText"
	UnitWeek      = "UnitWeek"
	UnitWeeks     = "UnitWeeks"
	UnitDay       = "UnitDay"
	UnitDays      = "UnitDays"
	UnitHour      = "UnitHour"
	UnitHours     = "UnitHours"
	UnitMinute    = "UnitMinute"
	UnitMinutes   = "UnitMinutes"
	UnitSecond    = "UnitSecond"
	UnitSeconds   = "UnitSeconds"
	Refreshing    = "Refreshing"
	ErrorGeneric  = "ErrorGeneric"
	LogFileAbsent = "LogFileAbsent"
	StartupNotice = "StartupNotice"
	PrivacyPolicy = "PrivacyPolicy"

	// ============================================================================
	// COMMAND MENU
	// ============================================================================

	CommandStart     = "CommandStart"
	CommandPrivacy   = "CommandPrivacy"
	CommandPing      = "CommandPing"
	CommandUptime    = "CommandUptime"
	CommandUsers     = "CommandUsers"
	CommandBatch     = "CommandBatch"
	CommandBroadcast = "CommandBroadcast"
	CommandStop      = "CommandStop"
	CommandLog       = "CommandLog"
)
