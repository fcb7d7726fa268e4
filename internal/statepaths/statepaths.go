package statepaths

import (
	"github.com/Evansxm/ev-ai-core/internal/pathutil"
	"github.com/spf13/viper"
)

const (
	MemoryStoreFilename  = "store.json"
	InteractionsFilename = "interactions.jsonl"
	WhatsAppAuditFile    = "whatsapp.jsonl"
	ConsoleHistoryFile   = "console_history"
)

func FileStateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("file_state_dir"))
}

func MemoryDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("memory.dir_name"),
		"memory",
	)
}

func SkillsDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("skills.dir_name"),
		"skills",
	)
}

func AuditDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("audit.dir_name"),
		"audit",
	)
}

func LocksDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("locks.dir_name"),
		"locks",
	)
}

func ConsoleHistoryPath() string {
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), ConsoleHistoryFile)
}
