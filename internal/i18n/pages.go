package i18n

// Page is the translated copy of one informational page shown by
// `wau about`.
type Page struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
}

// Section groups related items under a heading.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Item is a single bullet of a section. Detail is optional.
type Item struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// PageNames lists the known pages in navigation order.
var PageNames = []string{"home", "about", "waus", "wauc"}

// PageFor returns the named page in the active language.
func PageFor(name string) (Page, bool) {
	return PageIn(Language(), name)
}

// PageIn returns the named page in the given language, falling back to
// English.
func PageIn(lang Lang, name string) (Page, bool) {
	if p, ok := pages[lang][name]; ok {
		return p, true
	}
	p, ok := pages[English][name]
	return p, ok
}

var pages = map[Lang]map[string]Page{
	English: {
		"home": {
			Title:       "Explore the Agent Universe",
			Subtitle:    "Connect Infinite Possibilities",
			Description: "WAU is a network of Agents. In WAU, we bring search and personalized recommendations to the AI Agent domain. WAU makes it easy for non-technical people to use AI Agents.",
			Sections: []Section{
				{Title: "Redefining AI Agent Usage", Items: []Item{
					{"Smart Search", "Intelligent Agent Card-based matching to find the perfect Agent for your needs"},
					{"A2A Protocol", "Standardized Agent-to-Agent communication protocol for seamless cross-framework collaboration"},
					{"Instant Connection", "One-click connection to your needed Agent, immediate collaboration without complex setup"},
				}},
				{Title: "Agent Card: The Identity of Agents", Items: []Item{
					{"Standardized Description Format", ""},
					{"Capability Tagging", ""},
					{"Real-time Status Sync", ""},
					{"Security Access Control", ""},
				}},
				{Title: "Explore WAU Ecosystem", Items: []Item{
					{"WAUS (Whis Agent Universe Singularity)", "Gathering cutting-edge AI Agents to create an Agent core hub with the most advanced AI capabilities."},
					{"WAUC (Whis Agent Universe Center)", "Global Agent coordination and management platform for cross-Agent task allocation and collaboration."},
				}},
			},
		},
		"about": {
			Title:       "Redefining AI Agent",
			Subtitle:    "Discovery & Connection",
			Description: "After Google Search and TikTok, WAU will be the next paradigm shift in the AI era",
			Sections: []Section{
				{Title: "Evolution of AI Search", Items: []Item{
					{"2000s: People Find Info (Google Search)", "Users actively search for needed information"},
					{"2010s: Info Finds People (TikTok)", "Algorithm recommendation, information reaches users proactively"},
					{"2020s+: AI Agent Personalization (WAU)", "On-demand Agent matching for personalized AI services"},
				}},
				{Title: "Core Value Proposition", Items: []Item{
					{"Framework Agnostic", "Support for all mainstream frameworks including LangChain, LlamaIndex, CrewAI, Google ADK"},
					{"Secure & Controlled", "Standardized security mechanisms based on A2A protocol, protecting user privacy"},
					{"Instant Availability", "Standardized Agent Card for rapid discovery and connection"},
					{"Ecosystem Connectivity", "All Agents interconnected through the WAU network"},
					{"Smart Matching", "AI-driven Agent recommendations for precise user need matching"},
					{"High Performance", "Optimized routing and scheduling for low-latency responses"},
				}},
			},
		},
		"waus": {
			Title:       "Whis Agent Universe",
			Subtitle:    "Singularity",
			Description: "Agent Singularity: gathering cutting-edge AI Agents to create an Agent core hub",
			Sections: []Section{
				{Title: "Featured Agents", Items: []Item{
					{"CodeMaster Pro", "Coding Assistant: Code Generation, Debugging, Refactoring"},
					{"DataInsight", "Data Analysis: Visualization, Statistics"},
					{"ResearchBuddy", "Research Assistant: Literature Search, Summarization"},
					{"CreativeGen", "Creative Generation: Copywriting, Design, Video"},
				}},
				{Title: "Network", Items: []Item{
					{"1000+", "Active Agents"},
					{"50+", "Capability Categories"},
					{"99.9%", "Uptime"},
					{"<50ms", "Avg Latency"},
				}},
			},
		},
		"wauc": {
			Title:       "Whis Agent Universe",
			Subtitle:    "Center",
			Description: "Agent Center: global coordination and management platform for intelligent cross-Agent collaboration",
			Sections: []Section{
				{Title: "WAUC Architecture", Items: []Item{
					{"User Request", ""},
					{"Agent Match", ""},
					{"A2A Communication", ""},
					{"Result Return", ""},
				}},
				{Title: "Core Features", Items: []Item{
					{"Smart Routing", "Load Balancing, Failover, Latency Optimization"},
					{"Agent Registration & Discovery", "Real-time Status, Capability Index, Version Management"},
					{"A2A Protocol Gateway", "Message Transformation, Security Authentication, Traffic Control"},
					{"Monitoring & Logging", "Request Tracing, Performance Metrics, Alerting"},
				}},
			},
		},
	},
	Chinese: {
		"home": {
			Title:       "探索智能体宇宙",
			Subtitle:    "连接无限可能",
			Description: "WAU 是一个由众多Agent组成的网络，在WAU中，我们将搜索和个性化推荐引入到AI Agent领域。WAU让不懂技术的人轻松使用AI Agent。",
			Sections: []Section{
				{Title: "重新定义 AI Agent 的使用方式", Items: []Item{
					{"智能搜索", "基于 Agent Card 的智能匹配，快速找到最适合你需求的 Agent"},
					{"A2A 协议", "标准化的 Agent-to-Agent 通信协议，实现跨框架的无缝协作"},
					{"即时连接", "一键连接你需要的 Agent，立即开始协作，无需复杂配置"},
				}},
				{Title: "Agent Card：智能体的名片", Items: []Item{
					{"标准化描述格式", ""},
					{"能力标签分类", ""},
					{"实时状态同步", ""},
					{"安全权限控制", ""},
				}},
				{Title: "探索 WAU 生态", Items: []Item{
					{"WAUS (Whis Agent Universe Singularity)", "汇聚各类先进 Agent，打造智能体核心枢纽，提供最前沿的 AI 能力支持。"},
					{"WAUC (Whis Agent Universe Center)", "全局 Agent 协调与管理平台，实现跨 Agent 的任务分配与协作。"},
				}},
			},
		},
		"about": {
			Title:       "重新定义 AI Agent 的",
			Subtitle:    "发现与连接",
			Description: "在 Google 搜索和 TikTok 之后，WAU 将成为 AI 时代的下一个范式转变",
			Sections: []Section{
				{Title: "AI 搜索的进化", Items: []Item{
					{"2000s：人找信息（Google 搜索）", "用户主动搜索，获取所需信息"},
					{"2010s：信息找人（TikTok）", "算法推荐，信息主动触达用户"},
					{"2020s+：AI Agent 个性化（WAU）", "智能体按需匹配，提供个性化 AI 服务"},
				}},
				{Title: "核心价值主张", Items: []Item{
					{"框架无关", "支持 LangChain、LlamaIndex、CrewAI、Google ADK 等所有主流框架"},
					{"安全可控", "基于 A2A 协议的标准化安全机制，保护用户隐私"},
					{"即时可用", "标准化的 Agent Card 实现快速发现和连接"},
					{"生态互联", "所有 Agent 通过 WAU 网络实现互联互通"},
					{"智能匹配", "AI 驱动的 Agent 推荐，精准匹配用户需求"},
					{"高性能", "优化的路由和调度机制，确保低延迟响应"},
				}},
			},
		},
		"waus": {
			Title:       "Whis Agent Universe",
			Subtitle:    "Singularity",
			Description: "Agent 奇点：汇聚最前沿的 AI Agent，打造智能体核心枢纽",
			Sections: []Section{
				{Title: "精选 Agent", Items: []Item{
					{"CodeMaster Pro", "编程助手：代码生成、调试、重构"},
					{"DataInsight", "数据分析：可视化、统计分析"},
					{"ResearchBuddy", "研究助手：文献搜索、总结"},
					{"CreativeGen", "创意生成：文案、设计、视频"},
				}},
				{Title: "网络", Items: []Item{
					{"1000+", "活跃 Agent"},
					{"50+", "能力类别"},
					{"99.9%", "可用性"},
					{"<50ms", "平均延迟"},
				}},
			},
		},
		"wauc": {
			Title:       "Whis Agent Universe",
			Subtitle:    "Center",
			Description: "Agent 中心：全局协调与管理平台，实现跨 Agent 的智能协作",
			Sections: []Section{
				{Title: "WAUC 架构", Items: []Item{
					{"用户请求", ""},
					{"Agent 匹配", ""},
					{"A2A 通信", ""},
					{"结果返回", ""},
				}},
				{Title: "核心功能", Items: []Item{
					{"智能路由", "负载均衡、故障转移、延迟优化"},
					{"Agent 注册与发现", "实时状态、能力索引、版本管理"},
					{"A2A 协议网关", "消息转换、安全认证、流量控制"},
					{"监控与日志", "请求追踪、性能指标、异常告警"},
				}},
			},
		},
	},
}
