package settings

import (
	"aitotype/internal/domain"
	"aitotype/internal/providers"
)

const (
	DefaultOpenRouterModel  = "google/gemini-3-flash-preview"
	DefaultSiliconFlowModel = "TeleAI/TeleSpeechASR"

	DefaultOpenRouterEnhanceModel  = "google/gemini-2.5-flash"
	DefaultSiliconFlowEnhanceModel = "Qwen/Qwen2.5-7B-Instruct"

	// PromptPlaceholder marks where the transcript goes in an enhancement prompt.
	PromptPlaceholder = providers.PromptPlaceholder

	DefaultEnhancePrompt = "Clean up the following dictated text. Fix punctuation, casing and obvious " +
		"recognition errors, keep the original language and meaning, and output only the corrected text.\n\n" +
		PromptPlaceholder
)

// Preference keys.
const (
	PrefAutoCopy   = "aitotype_autocopy"
	PrefRecordMode = "aitotype_record_mode"

	credentialPrefix        = "aitotype_api_key_"
	enhanceCredentialPrefix = "aitotype_enhance_api_key_"
)

// DefaultModel returns the provider's default transcription model.
func DefaultModel(provider domain.Provider) string {
	if provider == domain.ProviderSiliconFlow {
		return DefaultSiliconFlowModel
	}
	return DefaultOpenRouterModel
}

// DefaultEnhanceModel returns the provider's default enhancement model.
func DefaultEnhanceModel(provider domain.Provider) string {
	if provider == domain.ProviderSiliconFlow {
		return DefaultSiliconFlowEnhanceModel
	}
	return DefaultOpenRouterEnhanceModel
}

// CredentialKey is the preference key of a transcription credential.
func CredentialKey(provider domain.Provider) string {
	return credentialPrefix + string(domain.NormalizeProvider(string(provider)))
}

// EnhanceCredentialKey is the preference key of an enhancement credential.
func EnhanceCredentialKey(provider domain.Provider) string {
	return enhanceCredentialPrefix + string(domain.NormalizeProvider(string(provider)))
}

func isDefaultModel(model string) bool {
	return model == DefaultOpenRouterModel || model == DefaultSiliconFlowModel
}

func isDefaultEnhanceModel(model string) bool {
	return model == DefaultOpenRouterEnhanceModel || model == DefaultSiliconFlowEnhanceModel
}
