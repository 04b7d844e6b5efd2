package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Sync all connected users, every 30 minutes
	CronScheduleSyncUsers string `env:"CRON_SCHEDULE_SYNC_USERS" envDefault:"0 */30 * * * *"`
}
