package skills

// RegisterBuiltins installs the stock shell-backed skills. They run through
// the agent's guarded shell runner, never a raw exec.
func RegisterBuiltins(r *Registry) {
	builtins := []Skill{
		{Name: "system status", Description: "Kernel, hostname and load summary", Category: "sys", Command: "uname -a && uptime", Aliases: []string{"si"}, Enabled: true},
		{Name: "disk usage", Description: "Disk usage per mounted filesystem", Category: "sys", Command: "df -h", Aliases: []string{"df"}, Enabled: true},
		{Name: "memory usage", Description: "Memory and swap usage", Category: "sys", Command: "free -h", Enabled: true},
		{Name: "processes", Description: "Running processes", Category: "sys", Command: "ps aux --sort=-%cpu | head -n 20", Aliases: []string{"ps"}, Enabled: true},
		{Name: "uptime", Description: "System uptime and load", Category: "sys", Command: "uptime", Enabled: true},
		{Name: "network info", Description: "Interface addresses", Category: "net", Command: "ip -brief addr || ifconfig", Enabled: true},
		{Name: "git status", Description: "Working tree status", Category: "vc", Command: "git status", Enabled: true},
		{Name: "git log", Description: "Recent commits", Category: "vc", Command: "git log --oneline -n 10", Enabled: true},
		{Name: "docker ps", Description: "Running containers", Category: "docker", Command: "docker ps", Enabled: true},
		{Name: "current time", Description: "Local and UTC time", Category: "utils", Command: "date && date -u", Enabled: true},
	}
	for _, s := range builtins {
		r.Register(s)
	}
}
