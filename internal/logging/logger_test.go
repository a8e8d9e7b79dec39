package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"trace": TRACE,
		"DEBUG": DEBUG,
		"":      INFO,
		"warn":  WARN,
		"Error": ERROR,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, "уровень %q должен разбираться", in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err, "неизвестный уровень должен давать ошибку")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("erosion", &buf)

	l.Debug("скрыто %d", 1)
	l.Info("видно %d", 2)
	l.Error("ошибка %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "скрыто", "DEBUG не должен попадать в консоль при уровне INFO")
	assert.Contains(t, out, "[INFO] [erosion] видно 2")
	assert.Contains(t, out, "[ERROR] [erosion] ошибка 3")
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("ничего не происходит")
		Info("глобальный логгер не инициализирован")
	})
}

func TestGetComponentLogger_Disabled(t *testing.T) {
	CloseDefaultLogger()
	assert.Nil(t, GetComponentLogger("terrain"), "без глобального логгера компонентный логгер выключен")
}

func TestInitDefaultLogger_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitDefaultLogger("test", dir, WARN))
	defer CloseDefaultLogger()

	Info("в файл")
	logger := GetComponentLogger("terrain")
	require.NotNil(t, logger)
	assert.Equal(t, WARN, logger.minConsoleLevel, "компонент наследует уровень консоли")
	assert.NotNil(t, logger.fileLogger, "компонент пишет в общий файл")
}

func TestCloseDefaultLogger_DetachesHeldComponentLoggers(t *testing.T) {
	require.NoError(t, InitDefaultLogger("test", t.TempDir(), INFO))

	held := GetErosionLogger()
	require.NotNil(t, held)
	require.NotNil(t, held.fileLogger)

	CloseDefaultLogger()
	assert.Nil(t, held.fileLogger, "удерживаемый логгер не должен ссылаться на закрытый файл")

	var buf bytes.Buffer
	held.consoleLogger.SetOutput(&buf)
	assert.NotPanics(t, func() { held.Info("после закрытия") })
	assert.Contains(t, buf.String(), "после закрытия", "консольный вывод продолжает работать")
}

func TestLoggerManager_Components(t *testing.T) {
	require.NoError(t, InitDefaultLogger("test", "", INFO))
	defer CloseDefaultLogger()

	require.NotNil(t, GetErosionLogger())
	require.NotNil(t, GetPipelineLogger())
	assert.ElementsMatch(t, []string{"erosion", "pipeline"}, GetLoggerManager().ListComponents())

	require.NoError(t, GetLoggerManager().SetLogLevel("erosion", ERROR, ERROR))
	assert.Equal(t, ERROR, GetErosionLogger().minConsoleLevel)

	assert.Error(t, GetLoggerManager().SetLogLevel("network", INFO, INFO), "незарегистрированный компонент")
}
