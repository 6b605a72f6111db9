package config

import (
	"github.com/spf13/viper"
)

// newViper читает переменные окружения и необязательный .env в текущей директории.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// .env может отсутствовать, это не ошибка
	_ = v.ReadInConfig()
	return v
}
