package i18n

// Key identifies a translatable message.
type Key string

// Workflow messages
const (
	MsgURLRequired        Key = "workflow.url_required"
	MsgRequiredFields     Key = "workflow.required_fields"
	MsgDiscoverFailed     Key = "workflow.discover_failed"
	MsgStartRegistration  Key = "workflow.start_registration"
	MsgTaskCreated        Key = "workflow.task_created"
	MsgAuditQueued        Key = "workflow.audit_queued"
	MsgProcessing         Key = "workflow.processing"
	MsgRegistered         Key = "workflow.registered"
	MsgRegisterFailed     Key = "workflow.register_failed"
	MsgRegisterFailedWith Key = "workflow.register_failed_with"
	MsgDuplicateLog       Key = "workflow.duplicate_log"
	MsgDuplicate          Key = "workflow.duplicate"
	MsgPollTimeout        Key = "workflow.poll_timeout"
	MsgTrustScoreNA       Key = "workflow.trust_score_na"
)

// Wizard labels
const (
	UIStepDiscovery  Key = "ui.step.discovery"
	UIStepConfirm    Key = "ui.step.confirm"
	UIStepProcessing Key = "ui.step.processing"
	UITitle          Key = "ui.title"
	UIURLPrompt      Key = "ui.url_prompt"
	UIURLPlaceholder Key = "ui.url_placeholder"
	UIDiscovering    Key = "ui.discovering"
	UIConfirmHint    Key = "ui.confirm_hint"
	UIRegistering    Key = "ui.registering"
	UISuccessHint    Key = "ui.success_hint"
	UIErrorHint      Key = "ui.error_hint"
	UIDuplicateHint  Key = "ui.duplicate_hint"
	UIEditingField   Key = "ui.editing_field"
	UIRequiredMarker Key = "ui.required_marker"
	UIQuitHint       Key = "ui.quit_hint"
	UIStepCounter    Key = "ui.step_counter"
)

var messages = map[Lang]map[Key]string{
	English: {
		MsgURLRequired:        "Please enter the agent URL",
		MsgRequiredFields:     "Name and description are required",
		MsgDiscoverFailed:     "Failed to discover agent card",
		MsgStartRegistration:  "Starting registration for %s",
		MsgTaskCreated:        "Task created: %s",
		MsgAuditQueued:        "Added to audit queue",
		MsgProcessing:         "Processing: %s...",
		MsgRegistered:         "Registration successful! Trust Score: %s",
		MsgRegisterFailed:     "Registration failed",
		MsgRegisterFailedWith: "Registration failed: %s",
		MsgDuplicateLog:       "Agent is already registered",
		MsgDuplicate:          "This agent has already been registered",
		MsgPollTimeout:        "Registration is taking longer than expected",
		MsgTrustScoreNA:       "N/A",

		UIStepDiscovery:  "Discover",
		UIStepConfirm:    "Confirm",
		UIStepProcessing: "Register",
		UITitle:          "WAU Agent Registration",
		UIURLPrompt:      "Agent URL",
		UIURLPlaceholder: "https://agent.example.com",
		UIDiscovering:    "Discovering agent card...",
		UIConfirmHint:    "↑/↓ select • Enter edit • Ctrl+S submit • Esc back",
		UIRegistering:    "Registering...",
		UISuccessHint:    "Press Enter to register another agent",
		UIErrorHint:      "Press Esc to go back and edit",
		UIDuplicateHint:  "Press Ctrl+C to quit",
		UIEditingField:   "Editing %s (Enter to save, Esc to discard)",
		UIRequiredMarker: "required",
		UIQuitHint:       "Ctrl+C quit",
		UIStepCounter:    "Step %d/%d: %s",
	},
	Chinese: {
		MsgURLRequired:        "请输入 Agent URL",
		MsgRequiredFields:     "名称和描述为必填项",
		MsgDiscoverFailed:     "获取 Agent Card 失败",
		MsgStartRegistration:  "开始注册 %s",
		MsgTaskCreated:        "任务已创建: %s",
		MsgAuditQueued:        "已加入审核队列",
		MsgProcessing:         "处理中: %s...",
		MsgRegistered:         "注册成功！信任评分: %s",
		MsgRegisterFailed:     "注册失败",
		MsgRegisterFailedWith: "注册失败: %s",
		MsgDuplicateLog:       "该 Agent 已注册",
		MsgDuplicate:          "该 Agent 已经注册过了",
		MsgPollTimeout:        "注册耗时超出预期",
		MsgTrustScoreNA:       "暂无",

		UIStepDiscovery:  "发现",
		UIStepConfirm:    "确认",
		UIStepProcessing: "注册",
		UITitle:          "WAU Agent 注册",
		UIURLPrompt:      "Agent URL",
		UIURLPlaceholder: "https://agent.example.com",
		UIDiscovering:    "正在获取 Agent Card...",
		UIConfirmHint:    "↑/↓ 选择 • Enter 编辑 • Ctrl+S 提交 • Esc 返回",
		UIRegistering:    "注册中...",
		UISuccessHint:    "按 Enter 注册另一个 Agent",
		UIErrorHint:      "按 Esc 返回修改",
		UIDuplicateHint:  "按 Ctrl+C 退出",
		UIEditingField:   "正在编辑 %s（Enter 保存，Esc 放弃）",
		UIRequiredMarker: "必填",
		UIQuitHint:       "Ctrl+C 退出",
		UIStepCounter:    "第 %d/%d 步: %s",
	},
}
